package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"northline/internal/export"
	"northline/internal/gate"
	"northline/internal/metrics"
	"northline/internal/models"
	"northline/internal/service"

	"github.com/rs/zerolog"
)

const (
	msgCreated      = "Booking created."
	msgDeleted      = "Booking deleted."
	msgNoMatch      = "No booking matched the id."
	msgCleared      = "All bookings removed."
	msgInternal     = "Something went wrong. Please try again."
	msgStorage      = "Bookings are temporarily unavailable. Please try again."
	msgBodyTooLarge = "Request body too large."
	msgInvalidJSON  = "Invalid JSON body."
	msgNullBody     = "Request body must not be null."
)

var (
	errBodyTooLarge = errors.New(msgBodyTooLarge)
	errInvalidJSON  = errors.New(msgInvalidJSON)
	errNullBody     = errors.New(msgNullBody)
)

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.listBookings(w, r)
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodDelete:
		s.clearBookings(w, r)
	default:
		methodNotAllowed(w, "GET, POST, DELETE")
	}
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.storageFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "bookings": bookings})
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	payload, err := s.decodeObject(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, fieldErrs, err := s.service.Create(r.Context(), payload)
	if err != nil {
		s.storageFailure(w, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		for _, field := range fieldErrs.Fields() {
			metrics.IncValidationFailure(field)
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"ok":      false,
			"errors":  fieldErrs,
			"message": fieldErrs.First(),
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok":      true,
		"booking": booking,
		"message": msgCreated,
	})
}

func (s *HTTPServer) clearBookings(w http.ResponseWriter, r *http.Request) {
	err := s.service.Clear(r.Context(), s.credential(r))
	switch {
	case errors.Is(err, gate.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case err != nil:
		s.storageFailure(w, r, err)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": msgCleared})
	}
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/bookings/")
	removed, err := s.service.Delete(r.Context(), s.credential(r), id)
	switch {
	case errors.Is(err, gate.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case errors.Is(err, service.ErrIDRequired):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.storageFailure(w, r, err)
		return
	}

	message := msgNoMatch
	if removed {
		message = msgDeleted
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      removed,
		"removed": removed,
		"message": message,
	})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodDelete {
		// a booking may legitimately carry the id "export"
		s.handleBookingByID(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	bookings, err := s.service.Export(r.Context(), s.credential(r))
	if errors.Is(err, gate.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		s.storageFailure(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, bookings); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render export")
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	name := export.FileName(s.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *HTTPServer) handleUnlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	payload, err := s.decodeObject(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.service.VerifyPasscode(payload.GetText("passcode")); err != nil {
		metrics.IncUnlock(false)
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"ok":       false,
			"unlocked": false,
			"message":  err.Error(),
		})
		return
	}

	metrics.IncUnlock(true)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "unlocked": true})
}

func (s *HTTPServer) handleSpec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, "GET")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"api_name":  models.APIName,
		"version":   models.APIVersion,
		"transport": "http_json",
		"api_base":  models.APIBase,
		"booking_fields": map[string]any{
			"required": []string{"name", "email", "phone", "service", "date", "time"},
			"optional": []string{"notes"},
		},
		"service_enum": models.Services,
		"constraints": map[string]any{
			"phone_pattern":            models.PhonePatternText,
			"date_format":              models.DateFormat,
			"time_format":              models.TimeFormat,
			"business_hours_local":     models.BusinessHoursText,
			"date_time_must_be_future": true,
		},
		"admin_header": s.adminHeader,
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.service.List(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
		writeError(w, http.StatusServiceUnavailable, msgStorage)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// credential is the passcode header of the request; a missing header is an empty passcode.
func (s *HTTPServer) credential(r *http.Request) gate.Credential {
	return gate.Passcode(r.Header.Get(s.adminHeader))
}

func (s *HTTPServer) storageFailure(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("storage failure")
	writeError(w, http.StatusInternalServerError, msgStorage)
}

// decodeObject reads a JSON object body. An empty body, an array or a
// scalar reads as an empty object; null is rejected.
func (s *HTTPServer) decodeObject(w http.ResponseWriter, r *http.Request) (models.RawInput, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, errInvalidJSON
	}
	if len(raw) == 0 {
		return models.RawInput{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, errInvalidJSON
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errInvalidJSON
	}

	switch v := value.(type) {
	case map[string]any:
		return models.RawInput(v), nil
	case nil:
		return nil, errNullBody
	default:
		// arrays and scalars carry no named fields
		return models.RawInput{}, nil
	}
}
