package server

import (
	"encoding/json"
	"net/http"

	"yt-mp3-service/application/download"
	"yt-mp3-service/domain/pipeline"
)

type downloadRequest struct {
	URL       string `json:"url"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type downloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
	Title       string `json:"title"`
}

type infoRequest struct {
	URL string `json:"url"`
}

type infoResponse struct {
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	Author    string `json:"author,omitempty"`
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, pipeline.NewError(pipeline.KindInvalidInput, "invalid request body", err))
		return
	}

	result, err := s.downloads.Run(r.Context(), download.Input{
		URL:       req.URL,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, downloadResponse{
		DownloadURL: result.DownloadURL,
		Title:       result.Title,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	var req infoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, pipeline.NewError(pipeline.KindInvalidInput, "invalid request body", err))
		return
	}

	info, err := s.metadata.Get(r.Context(), req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, infoResponse{
		Title:     info.Title,
		Duration:  info.Duration,
		Thumbnail: info.Thumbnail,
		Author:    info.Author,
	})
}
