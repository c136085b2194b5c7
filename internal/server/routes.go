package server

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all backend routes on the gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	router.GET("/", handleHealth())

	router.POST("/api/thread", handleCreateThread(opts))
	router.GET("/api/chat", handleChat(opts))

	router.POST("/api/upload", handleUpload(opts))
	router.GET("/api/files", handleListFiles(opts))
	router.DELETE("/api/files/:id", handleDeleteFile(opts))
}

func handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleCreateThread(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		threadID, err := opts.Client.CreateThread(c.Request.Context())
		if err != nil {
			log.Printf("server: create thread: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create thread"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"thread_id": threadID})
	}
}

func handleUpload(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file part is required"})
			return
		}
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read upload"})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read upload"})
			return
		}

		file, err := opts.Client.UploadFile(c.Request.Context(), header.Filename, data)
		if err != nil {
			log.Printf("server: upload %s: %v", header.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}

		// Attach is best-effort: the file is already stored remotely and the
		// registry entry lets the user retry or delete it.
		if err := opts.Client.AttachFile(c.Request.Context(), file.ID); err != nil {
			log.Printf("server: attach %s: %v", file.ID, err)
		}

		opts.Files.Put(FileRecord{
			ID:         file.ID,
			Filename:   file.Filename,
			UploadedAt: time.Now(),
		})
		c.JSON(http.StatusOK, gin.H{"id": file.ID, "filename": file.Filename})
	}
}

func handleListFiles(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"files": opts.Files.List()})
	}
}

func handleDeleteFile(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := opts.Client.DeleteFile(c.Request.Context(), id); err != nil {
			log.Printf("server: delete %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
			return
		}
		opts.Files.Remove(id)
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}
