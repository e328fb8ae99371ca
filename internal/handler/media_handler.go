package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/middleware"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/service"
)

// MediaHandler serves listing image and document uploads and downloads.
type MediaHandler struct {
	Svc *service.ListingService
}

func (h *MediaHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/listings/:id/images/:imageID", h.DownloadImage)
}

func (h *MediaHandler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/listings/:id/images", h.UploadImage)
	rg.DELETE("/listings/:id/images/:imageID", h.DeleteImage)
	rg.PUT("/listings/:id/images/:imageID/primary", h.SetPrimaryImage)

	rg.POST("/listings/:id/documents", h.UploadDocument)
	rg.GET("/listings/:id/documents/:docID", h.DownloadDocument)
	rg.DELETE("/listings/:id/documents/:docID", h.DeleteDocument)
}

// POST /api/listings/:id/images  (multipart field "file")
func (h *MediaHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	img, err := h.Svc.AddImage(c.Request.Context(), middleware.ActorFrom(c),
		c.Param("id"), fileHeader.Filename, contentType, file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

// GET /api/listings/:id/images/:imageID
func (h *MediaHandler) DownloadImage(c *gin.Context) {
	data, img, err := h.Svc.ImageBlob(c.Request.Context(), middleware.ActorFrom(c),
		c.Param("id"), c.Param("imageID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename="+img.FileName)
	c.Data(http.StatusOK, img.ContentType, data)
}

// DELETE /api/listings/:id/images/:imageID
func (h *MediaHandler) DeleteImage(c *gin.Context) {
	err := h.Svc.RemoveImage(c.Request.Context(), middleware.ActorFrom(c),
		c.Param("id"), c.Param("imageID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// PUT /api/listings/:id/images/:imageID/primary
func (h *MediaHandler) SetPrimaryImage(c *gin.Context) {
	err := h.Svc.SetPrimaryImage(c.Request.Context(), middleware.ActorFrom(c),
		c.Param("id"), c.Param("imageID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "primary image set"})
}

// POST /api/listings/:id/documents  (multipart field "file")
func (h *MediaHandler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	doc, err := h.Svc.AttachDocument(c.Request.Context(), middleware.ActorFrom(c),
		c.Param("id"), fileHeader.Filename, contentType, file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// GET /api/listings/:id/documents/:docID
func (h *MediaHandler) DownloadDocument(c *gin.Context) {
	data, doc, err := h.Svc.DocumentBlob(c.Request.Context(), middleware.ActorFrom(c),
		c.Param("id"), c.Param("docID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+doc.FileName)
	c.Data(http.StatusOK, doc.ContentType, data)
}

// DELETE /api/listings/:id/documents/:docID
func (h *MediaHandler) DeleteDocument(c *gin.Context) {
	err := h.Svc.RemoveDocument(c.Request.Context(), middleware.ActorFrom(c),
		c.Param("id"), c.Param("docID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
