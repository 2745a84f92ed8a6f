// Package httpapi exposes the document lifecycle and the authority's
// callback endpoints over HTTP.
package httpapi

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/etranslation/server/internal/common"
	"github.com/etranslation/server/internal/logging"
	"github.com/etranslation/server/internal/server/models"
	"github.com/etranslation/server/internal/server/services"
)

// DocumentService is the lifecycle surface the handlers need.
type DocumentService interface {
	Create(ctx context.Context, document []byte, fromLang, toLang string) (uuid.UUID, error)
	Status(ctx context.Context, requestID uuid.UUID) (*models.TranslationStatus, error)
	Document(ctx context.Context, requestID uuid.UUID) ([]byte, error)
	Delete(ctx context.Context, requestID uuid.UUID) error
}

// CallbackService ingests the authority's asynchronous answers.
type CallbackService interface {
	Success(ctx context.Context, partID uuid.UUID, toLang string, translatedText []byte) error
	Failure(ctx context.Context, partID uuid.UUID, errorCode, errorMessage string) error
}

type Handler struct {
	documents DocumentService
	callbacks CallbackService
	languages []string
	logger    logging.Logger
}

func NewHandler(documents DocumentService, callbacks CallbackService, languages []string, logger logging.Logger) *Handler {
	return &Handler{
		documents: documents,
		callbacks: callbacks,
		languages: languages,
		logger:    logger,
	}
}

func (h *Handler) Register(e *echo.Echo) {
	e.POST("/documents", h.createDocument)
	e.GET("/documents/:id/status", h.documentStatus)
	e.GET("/documents/:id", h.document)
	e.DELETE("/documents/:id", h.deleteDocument)

	e.POST("/callbacks/success", h.successCallback)
	e.POST("/callbacks/error", h.errorCallback)

	e.GET("/health", h.health)
	e.GET("/config", h.config)
}

type createDocumentRequest struct {
	Document []byte `json:"document"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type createDocumentResponse struct {
	ID uuid.UUID `json:"id"`
}

func (h *Handler) createDocument(c echo.Context) error {
	var req createDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Document) == 0 || req.From == "" || req.To == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "document, from and to are required")
	}

	id, err := h.documents.Create(c.Request().Context(), req.Document, req.From, req.To)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, createDocumentResponse{ID: id})
}

type statusResponse struct {
	Status models.RequestStatus `json:"status"`
	At     string               `json:"at"`
}

func (h *Handler) documentStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	status, err := h.documents.Status(c.Request().Context(), id)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, statusResponse{
		Status: status.Status,
		At:     status.At.Format(time.RFC3339),
	})
}

func (h *Handler) document(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	document, err := h.documents.Document(c.Request().Context(), id)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, document)
}

func (h *Handler) deleteDocument(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.documents.Delete(c.Request().Context(), id); err != nil {
		return h.serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// successCallback receives the translated text, base64-encoded, as the
// request body — the counterpart of the base64 encoding on the outbound
// submission. The part id travels in the external-reference parameter,
// mirroring what Send put into the submission.
func (h *Handler) successCallback(c echo.Context) error {
	partID, err := uuid.Parse(c.QueryParam("external-reference"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid external-reference")
	}
	toLang := c.QueryParam("target-language")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}
	translated, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(body)))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body is not valid base64")
	}
	if len(translated) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "empty translation")
	}

	if err := h.callbacks.Success(c.Request().Context(), partID, toLang, translated); err != nil {
		return h.serviceError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// errorCallback reads the error attributes the way the authority sends
// them: as form fields, with the error code arriving under either spelling.
// Query parameters are accepted as a fallback.
func (h *Handler) errorCallback(c echo.Context) error {
	partID, err := uuid.Parse(callbackParam(c, "external-reference"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid external-reference")
	}

	errorCode := callbackParam(c, "error-code", "error_code")
	errorMessage := callbackParam(c, "error-message", "error_message")

	if err := h.callbacks.Failure(c.Request().Context(), partID, errorCode, errorMessage); err != nil {
		return h.serviceError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// callbackParam returns the first non-empty value among the given names,
// checking form fields before query parameters.
func callbackParam(c echo.Context, names ...string) string {
	for _, name := range names {
		if v := c.FormValue(name); v != "" {
			return v
		}
		if v := c.QueryParam(name); v != "" {
			return v
		}
	}
	return ""
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type configResponse struct {
	Languages []string `json:"languages"`
}

func (h *Handler) config(c echo.Context) error {
	return c.JSON(http.StatusOK, configResponse{Languages: h.languages})
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}
	return id, nil
}

// serviceError maps service errors onto HTTP answers. Unclassified errors
// are logged and answered as 500 without leaking details.
func (h *Handler) serviceError(c echo.Context, err error) error {
	var (
		failed     *services.TranslationFailedError
		incomplete *services.IncompleteError
	)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.As(err, &incomplete):
		return echo.NewHTTPError(http.StatusConflict, incomplete.Error())
	case errors.As(err, &failed):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, failed.Error())
	default:
		h.logger.Error(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
