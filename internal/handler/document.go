package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

// DocumentHandler serves the encrypted document vault: upload,
// download, presigned links and deletion of guest identity documents.
type DocumentHandler struct {
	Vault      *service.VaultService
	PresignTTL time.Duration
}

// NewDocumentHandler constructs a DocumentHandler. The vault must be non-nil.
func NewDocumentHandler(vault *service.VaultService, presignTTL time.Duration) *DocumentHandler {
	if vault == nil {
		panic("nil vault passed to NewDocumentHandler")
	}
	return &DocumentHandler{Vault: vault, PresignTTL: presignTTL}
}

// Upload handles POST /v1/documents. The document arrives as the
// "file" part of a multipart form; its declared Content-Type is
// checked against the vault's allow-list.
func (h *DocumentHandler) Upload(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing file part"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file part"})
	}
	defer src.Close()

	plaintext, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file part"})
	}

	doc, err := h.Vault.StoreDocument(c.Request().Context(), p.UserID, plaintext, fh.Header.Get("Content-Type"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// Download handles GET /v1/documents/:id and streams the decrypted
// plaintext back with its original Content-Type.
func (h *DocumentHandler) Download(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	plaintext, mimeType, err := h.Vault.RetrieveDocument(c.Request().Context(), docID, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Blob(http.StatusOK, mimeType, plaintext)
}

// Link handles GET /v1/documents/:id/link and returns a short-lived
// presigned URL to the sealed object. The payload stays encrypted; the
// link is only useful to holders of the data key, i.e. this service.
func (h *DocumentHandler) Link(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	url, err := h.Vault.DocumentLink(c.Request().Context(), docID, p, h.PresignTTL)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"url":       url,
		"expiresAt": time.Now().UTC().Add(h.PresignTTL).Format(time.RFC3339),
	})
}

// Delete handles DELETE /v1/documents/:id. The sealed object is
// removed first; if the record removal then fails the response is a
// 500 and the record is flagged for operator reconciliation.
func (h *DocumentHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	docID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Vault.DeleteDocument(c.Request().Context(), docID, p); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
