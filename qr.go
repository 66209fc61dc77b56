/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/base64"
	"image/color"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/shufflebox/rooms"
)

const qrSize = 300

var qrForeground = color.RGBA{R: 0x1a, G: 0x47, B: 0x2a, A: 0xff}

func renderQR(content string) ([]byte, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	q.ForegroundColor = qrForeground
	q.BackgroundColor = color.White

	return q.PNG(qrSize)
}

// qrDataURL renders content as an inline PNG suitable for an <img> src.
func qrDataURL(content string) (string, error) {
	png, err := renderQR(content)
	if err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// serveQR renders the join link for :code as a PNG.
func serveQR(cfg *Config, logger zerolog.Logger, registry *rooms.Registry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, err := registry.Lookup(ps.ByName("code"))
		if err != nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		png, err := renderQR(joinURL(cfg, r, room.Code()))
		if err != nil {
			logger.Error().Err(err).Str("room", room.Code()).Msg("SERVE: qr generation failed")
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}
