package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/model"
)

// Client talks to the driving-school REST backend. Auth is a bearer token
// injected on every request; the token's identity (a service account with
// admin scope) is decided outside this package.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *zap.Logger
}

func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		token:      token,
		logger:     logger,
	}
}

// do runs one request and decodes the response body into out (when non-nil).
// Non-2xx responses become *APIError with the backend's mensaje; anything
// below HTTP (DNS, refused connection, timeout) comes back as a plain error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Mensaje string `json:"mensaje"`
			Error   string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil {
			if envelope.Mensaje != "" {
				apiErr.Mensaje = envelope.Mensaje
			} else {
				apiErr.Mensaje = envelope.Error
			}
		}
		c.logger.Warn("Backend rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("mensaje", apiErr.Mensaje))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// WeekBlocks fetches the availability blocks of the week at the given offset
// from the current one. alumnoID scopes category filtering server-side; nil
// fetches the unfiltered admin view.
func (c *Client) WeekBlocks(ctx context.Context, week int, alumnoID *int64) ([]*model.Block, error) {
	query := url.Values{"semana": {strconv.Itoa(week)}}
	if alumnoID != nil {
		query.Set("id_alumno", strconv.FormatInt(*alumnoID, 10))
	}
	var blocks []*model.Block
	if err := c.do(ctx, http.MethodGet, "/bloques/semanal", query, nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// ReservationsByAlumno fetches the student's reservations, each embedding its
// block and optional attendance record. week, when non-nil, narrows to one
// week window.
func (c *Client) ReservationsByAlumno(ctx context.Context, alumnoID int64, week *int) ([]*model.Reservation, error) {
	query := url.Values{"id_alumno": {strconv.FormatInt(alumnoID, 10)}}
	if week != nil {
		query.Set("semana", strconv.Itoa(*week))
	}
	var reservations []*model.Reservation
	if err := c.do(ctx, http.MethodGet, "/reservas/", query, nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// TodayReservations fetches all reservations scheduled for today (admin view).
func (c *Client) TodayReservations(ctx context.Context) ([]*model.Reservation, error) {
	var reservations []*model.Reservation
	if err := c.do(ctx, http.MethodGet, "/reservas/hoy", nil, nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

type createReservationsRequest struct {
	IDMatricula int64             `json:"id_matricula"`
	Reservas    []reservationItem `json:"reservas"`
}

type reservationItem struct {
	IDBloque int64 `json:"id_bloque"`
}

type reservationsResponse struct {
	Reservas []*model.Reservation `json:"reservas"`
}

// CreateReservations books the given blocks against the enrollment in a
// single request and returns the created reservation records.
func (c *Client) CreateReservations(ctx context.Context, matriculaID int64, blockIDs []int64) ([]*model.Reservation, error) {
	req := createReservationsRequest{IDMatricula: matriculaID}
	for _, id := range blockIDs {
		req.Reservas = append(req.Reservas, reservationItem{IDBloque: id})
	}
	var resp reservationsResponse
	if err := c.do(ctx, http.MethodPost, "/reservas/", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Reservas, nil
}

type deleteReservationsRequest struct {
	IDMatricula int64   `json:"id_matricula"`
	IDsReservas []int64 `json:"ids_reservas"`
}

// DeleteReservations cancels the given reservations in a single request and
// returns the removed records.
func (c *Client) DeleteReservations(ctx context.Context, matriculaID int64, reservaIDs []int64) ([]*model.Reservation, error) {
	req := deleteReservationsRequest{IDMatricula: matriculaID, IDsReservas: reservaIDs}
	var resp reservationsResponse
	if err := c.do(ctx, http.MethodDelete, "/reservas/", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Reservas, nil
}

// EnrollmentsByAlumno fetches the student's enrollments, newest first.
func (c *Client) EnrollmentsByAlumno(ctx context.Context, alumnoID int64) ([]*model.Enrollment, error) {
	query := url.Values{"id_alumno": {strconv.FormatInt(alumnoID, 10)}}
	var enrollments []*model.Enrollment
	if err := c.do(ctx, http.MethodGet, "/matriculas/", query, nil, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// EnrollmentByID fetches a single enrollment.
func (c *Client) EnrollmentByID(ctx context.Context, matriculaID int64) (*model.Enrollment, error) {
	query := url.Values{"id_matricula": {strconv.FormatInt(matriculaID, 10)}}
	var enrollments []*model.Enrollment
	if err := c.do(ctx, http.MethodGet, "/matriculas/", query, nil, &enrollments); err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return nil, &APIError{Status: http.StatusNotFound, Mensaje: "Matrícula no encontrada"}
	}
	return enrollments[0], nil
}

// AttendancesByAlumno fetches the student's attendance history.
func (c *Client) AttendancesByAlumno(ctx context.Context, alumnoID int64) ([]*model.Attendance, error) {
	query := url.Values{"id_alumno": {strconv.FormatInt(alumnoID, 10)}}
	var attendances []*model.Attendance
	if err := c.do(ctx, http.MethodGet, "/asistencias/", query, nil, &attendances); err != nil {
		return nil, err
	}
	return attendances, nil
}

// TicketsByInstructor fetches the class tickets assigned to an instructor.
func (c *Client) TicketsByInstructor(ctx context.Context, instructorID int64) ([]*model.Ticket, error) {
	query := url.Values{"id_instructor": {strconv.FormatInt(instructorID, 10)}}
	var tickets []*model.Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets/", query, nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
