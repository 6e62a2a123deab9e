package analyses

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"nextcv/internal/shared/server/respond"
	"nextcv/internal/shared/util"
)

// CredentialHeader carries the caller's completion service key.
const CredentialHeader = "X-LLM-API-Key"

// HandlerOptions tunes the HTTP surface.
type HandlerOptions struct {
	// DefaultCredential is used when a request carries no key.
	DefaultCredential string
	MaxUploadBytes    int64
	// Timeout bounds each analysis, including the background hop.
	Timeout time.Duration
}

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc  *Service
	opts HandlerOptions
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, opts HandlerOptions) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{Svc: svc, opts: opts}
}

// RegisterRoutes attaches extraction and analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/extract", h.extractDocument)
	rg.POST("/analyses/resume", h.analyzeResume)
	rg.POST("/analyses/career", h.analyzeCareer)
}

func (h *Handler) extractDocument(c *gin.Context) {
	h.limitBody(c)
	fileName, data, ok := h.readUpload(c, true)
	if !ok {
		return
	}
	doc, err := h.Svc.Extract(h.requestContext(c), fileName, data)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"fileName": fileName,
		"format":   doc.Format,
		"text":     doc.Text,
	})
}

type resumeForm struct {
	ResumeText     string `form:"resumeText" json:"resumeText"`
	JobDescription string `form:"jobDescription" json:"jobDescription"`
	CompanyName    string `form:"companyName" json:"companyName"`
}

func (h *Handler) analyzeResume(c *gin.Context) {
	h.limitBody(c)
	c.Set("analysisKind", string(KindResumeMatch))
	var form resumeForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}
	ctx, cancel := h.analysisContext(c)
	defer cancel()
	credential := h.credential(c)

	var (
		res *Result
		err error
	)
	fileName, data, hasFile := h.readUpload(c, false)
	if c.IsAborted() {
		return
	}
	if hasFile {
		res, err = h.Svc.AnalyzeResumeUpload(ctx, fileName, data, form.JobDescription, form.CompanyName, credential)
	} else {
		res, err = h.Svc.Analyze(ctx, ResumeMatchRequest{
			ResumeText:     form.ResumeText,
			JobDescription: form.JobDescription,
			CompanyName:    form.CompanyName,
		}, credential)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) analyzeCareer(c *gin.Context) {
	h.limitBody(c)
	c.Set("analysisKind", string(KindCareerPath))
	var req CareerPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctx, cancel := h.analysisContext(c)
	defer cancel()

	res, err := h.Svc.Analyze(ctx, req, h.credential(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, res)
}

// readUpload reads the multipart "file" field. When required is false a
// missing file is not an error. Failures are written to c.
func (h *Handler) readUpload(c *gin.Context, required bool) (string, []byte, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		switch {
		case tooLarge(err):
			respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeUnreadableFile, "file is too large", nil)
		case required:
			respond.Error(c, http.StatusBadRequest, ErrorCodeMissingInput, "file is required", nil)
		}
		return "", nil, false
	}

	fileName, err := util.SanitizeFileName(header.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeUnsupportedFile, "invalid file name", nil)
		return "", nil, false
	}
	data, err := readFileHeader(header)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeUnreadableFile, "failed to read upload", nil)
		return "", nil, false
	}
	return fileName, data, true
}

func (h *Handler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func bindError(c *gin.Context, err error) {
	if tooLarge(err) {
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeUnreadableFile, "request is too large", nil)
		return
	}
	respond.Error(c, http.StatusBadRequest, ErrorCodeMissingInput, "invalid request body", nil)
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// credential prefers the per-request header, then a bearer token, then the
// configured key.
func (h *Handler) credential(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(CredentialHeader)); key != "" {
		return key
	}
	if auth := strings.TrimSpace(c.GetHeader("Authorization")); len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		if key := strings.TrimSpace(auth[7:]); key != "" {
			return key
		}
	}
	return h.opts.DefaultCredential
}

func (h *Handler) requestContext(c *gin.Context) context.Context {
	return WithRequestID(c.Request.Context(), c.GetString("requestId"))
}

func (h *Handler) analysisContext(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx := h.requestContext(c)
	if h.opts.Timeout > 0 {
		return context.WithTimeout(ctx, h.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func writeError(c *gin.Context, err error) {
	msg := Describe(err)
	respond.Error(c, statusFor(msg.Category), msg.Category, msg.Text, gin.H{"diagnostic": msg.Diagnostic})
}

func statusFor(category string) int {
	switch category {
	case ErrorCodeMissingInput:
		return http.StatusBadRequest
	case ErrorCodeUnsupportedFile:
		return http.StatusUnsupportedMediaType
	case ErrorCodeUnreadableFile:
		return http.StatusUnprocessableEntity
	case ErrorCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrorCodeServiceUnreachable:
		return http.StatusBadGateway
	case ErrorCodeMalformedOutput, ErrorCodeSchemaMismatch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
