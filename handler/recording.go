package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"voice-recorder/dto"
	"voice-recorder/pkg/apperror"
	"voice-recorder/service"
)

type RecordingHandler struct {
	recordings service.RecordingService
}

func NewRecordingHandler(recordings service.RecordingService) *RecordingHandler {
	return &RecordingHandler{recordings: recordings}
}

func (h *RecordingHandler) Create(c *gin.Context) {
	user := currentUser(c)

	var req dto.CreateRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, apperror.BadRequest("invalid request body"))
		return
	}

	recording, err := h.recordings.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK("Recording created successfully", recording))
}

func (h *RecordingHandler) UploadChunk(c *gin.Context) {
	user := currentUser(c)

	recordingID, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		respondError(c, apperror.BadRequest("audio file is required"))
		return
	}

	var form dto.UploadChunkForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, apperror.BadRequest("invalid chunk fields"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	audioData, err := io.ReadAll(file)
	if err != nil {
		respondError(c, err)
		return
	}

	chunk, err := h.recordings.UploadChunk(
		c.Request.Context(),
		user.ID,
		recordingID,
		form.ChunkIndex,
		form.IsLastChunk,
		audioData,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK("Chunk uploaded successfully", dto.ChunkUploadResponse{
		ID:         chunk.ID,
		ChunkIndex: chunk.ChunkIndex,
		Size:       chunk.Size,
	}))
}

func (h *RecordingHandler) List(c *gin.Context) {
	user := currentUser(c)

	recordings, err := h.recordings.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Recordings retrieved successfully", recordings))
}

func (h *RecordingHandler) Get(c *gin.Context) {
	user := currentUser(c)

	recordingID, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	recording, err := h.recordings.Get(c.Request.Context(), recordingID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Recording retrieved successfully", recording))
}

func (h *RecordingHandler) Stream(c *gin.Context) {
	user := currentUser(c)

	recordingID, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	chunk, err := h.recordings.Stream(c.Request.Context(), recordingID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Length", strconv.FormatInt(chunk.Size, 10))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, chunk.MimeType, chunk.AudioData)
}

func (h *RecordingHandler) Complete(c *gin.Context) {
	user := currentUser(c)

	recordingID, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	recording, err := h.recordings.Complete(c.Request.Context(), recordingID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Recording completed", recording))
}

func (h *RecordingHandler) Delete(c *gin.Context) {
	user := currentUser(c)

	recordingID, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.recordings.Delete(c.Request.Context(), recordingID, user.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Recording deleted successfully", nil))
}

func (h *RecordingHandler) Cancel(c *gin.Context) {
	user := currentUser(c)

	recordingID, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	recording, err := h.recordings.Cancel(c.Request.Context(), recordingID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Recording cancelled", recording))
}

// Debug reports chunk presence without blob bytes, for diagnosing uploads.
func (h *RecordingHandler) Debug(c *gin.Context) {
	user := currentUser(c)

	recordingID, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	recording, err := h.recordings.Get(c.Request.Context(), recordingID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	chunks, err := h.recordings.GetChunks(c.Request.Context(), recordingID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	chunkInfos := make([]gin.H, 0, len(chunks))
	var totalSize int64
	for _, chunk := range chunks {
		totalSize += chunk.Size
		chunkInfos = append(chunkInfos, gin.H{
			"id":             chunk.ID,
			"chunk_index":    chunk.ChunkIndex,
			"size":           chunk.Size,
			"mime_type":      chunk.MimeType,
			"has_audio_data": len(chunk.AudioData) > 0,
		})
	}

	c.JSON(http.StatusOK, dto.OK("Recording debug info", gin.H{
		"recording":    recording,
		"chunks":       chunkInfos,
		"total_chunks": len(chunks),
		"total_size":   totalSize,
	}))
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound("recording not found")
	}
	return id, nil
}
