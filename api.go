/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/Seednode/shufflebox/rooms"
)

type createRoomResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	JoinURL string `json:"joinUrl,omitempty"`
	QRCode  string `json:"qrCode,omitempty"`
	Error   string `json:"error,omitempty"`
}

type roomStatusResponse struct {
	Exists      bool `json:"exists"`
	Started     bool `json:"started"`
	PlayerCount int  `json:"playerCount"`
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any, errs chan<- error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs <- err
	}
}

// publicBase is the url join links are built on: --base-url if set, else
// whatever the request came in on.
func publicBase(cfg *Config, r *http.Request) string {
	if cfg.baseURL != "" {
		return cfg.baseURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host + cfg.prefix
}

func joinURL(cfg *Config, r *http.Request, code string) string {
	return publicBase(cfg, r) + "/join.html?room=" + url.QueryEscape(code)
}

func serveCreateRoom(cfg *Config, logger zerolog.Logger, registry *rooms.Registry, errs chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		reqLog := logger.With().Str("request", middleware.GetReqID(r.Context())).Str("ip", realIP(r)).Logger()

		room, err := registry.Create()
		if err != nil {
			reqLog.Error().Err(err).Msg("GAMES: room creation failed")
			writeJSON(cfg, w, http.StatusServiceUnavailable, createRoomResponse{Error: "Failed to create room"}, errs)
			return
		}

		link := joinURL(cfg, r, room.Code())

		qr, err := qrDataURL(link)
		if err != nil {
			reqLog.Error().Err(err).Str("room", room.Code()).Msg("SERVE: qr generation failed")
			writeJSON(cfg, w, http.StatusInternalServerError, createRoomResponse{Error: "Failed to generate QR code"}, errs)
			return
		}

		writeJSON(cfg, w, http.StatusOK, createRoomResponse{
			Success: true,
			Code:    room.Code(),
			JoinURL: link,
			QRCode:  qr,
		}, errs)

		reqLog.Info().
			Str("room", room.Code()).
			Str("join", link).
			Dur("took", time.Since(startTime).Round(time.Microsecond)).
			Msg("GAMES: created room")
	}
}

func serveRoomStatus(cfg *Config, registry *rooms.Registry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, err := registry.Lookup(ps.ByName("code"))
		if err != nil {
			writeJSON(cfg, w, http.StatusOK, roomStatusResponse{}, errs)
			return
		}

		status := room.Status()
		writeJSON(cfg, w, http.StatusOK, roomStatusResponse{
			Exists:      true,
			Started:     status.Started,
			PlayerCount: status.PlayerCount,
		}, errs)
	}
}

func registerRoomAPI(cfg *Config, logger zerolog.Logger, registry *rooms.Registry, mux *httprouter.Router, errs chan<- error) {
	limit := httprate.Limit(
		cfg.createLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(cfg, w, http.StatusTooManyRequests, createRoomResponse{Error: "Too many rooms created, try again shortly"}, errs)
		}),
	)
	create := limit(serveCreateRoom(cfg, logger, registry, errs))

	mux.Handler(http.MethodGet, cfg.prefix+"/api/create-room", create)
	mux.Handler(http.MethodPost, cfg.prefix+"/api/create-room", create)
	mux.GET(cfg.prefix+"/api/room/:code", serveRoomStatus(cfg, registry, errs))
	mux.GET(cfg.prefix+"/api/room/:code/qr", serveQR(cfg, logger, registry, errs))
}
