package domain

import (
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Action types accepted by the backend.
const (
	ActionTypeMessage = "mensagem"
	ActionTypeFile    = "arquivo"
)

// Attachment limits.
const (
	MaxActionFiles = 5
	MaxFileSize    = 10 * 1024 * 1024
)

// AcceptedFileTypes lists the MIME types the backend can forward over WhatsApp.
var AcceptedFileTypes = []string{
	"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp",
	"video/mp4", "video/avi", "video/mov", "video/wmv",
	"application/pdf",
	"application/msword", "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/plain", "text/csv",
}

// Action is an automated reaction bound to (step, option): send a message or a set of files.
type Action struct {
	ID          string       `json:"id" mapstructure:"id"`
	Step        StepID       `json:"etapa" mapstructure:"etapa"`
	Option      string       `json:"opcao" mapstructure:"opcao"`
	Type        string       `json:"acao_tipo" mapstructure:"acao_tipo"`
	Content     string       `json:"conteudo" mapstructure:"conteudo"`
	AwaitsReply bool         `json:"aguarda_resposta,omitempty" mapstructure:"aguarda_resposta"`
	FileName    string       `json:"arquivo_nome,omitempty" mapstructure:"arquivo_nome"`
	FileType    string       `json:"arquivo_tipo,omitempty" mapstructure:"arquivo_tipo"`
	Files       []StoredFile `json:"arquivos,omitempty" mapstructure:"arquivos"`
}

// StoredFile describes an attachment already held by the backend.
type StoredFile struct {
	Name string `json:"arquivo_nome" mapstructure:"arquivo_nome"`
	Type string `json:"arquivo_tipo" mapstructure:"arquivo_tipo"`
	Data string `json:"arquivo,omitempty" mapstructure:"arquivo"`
}

// Upload is a local file to attach to an action.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Validate checks the action fields that the backend requires.
func (a Action) Validate(creating bool) error {
	if creating && a.Step == "" {
		return fmt.Errorf("%w: step is required", ErrInvalidAction)
	}
	if a.Option == "" {
		return fmt.Errorf("%w: option is required", ErrInvalidAction)
	}
	switch a.Type {
	case ActionTypeMessage, ActionTypeFile:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAction, a.Type)
	}
	return nil
}

// ValidateUploads enforces the attachment count, size and MIME type limits.
// It returns every offending file at once so the caller can report them together.
func ValidateUploads(files []Upload) error {
	if len(files) > MaxActionFiles {
		return fmt.Errorf("%w: %d files, at most %d allowed", ErrTooManyFiles, len(files), MaxActionFiles)
	}
	var bad []string
	for _, f := range files {
		switch {
		case len(f.Data) > MaxFileSize:
			bad = append(bad, fmt.Sprintf("%s: file too large (max %s)", f.Name, FormatSize(MaxFileSize)))
		case !slices.Contains(AcceptedFileTypes, f.ContentType):
			bad = append(bad, fmt.Sprintf("%s: unsupported type %q", f.Name, f.ContentType))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidFile, bad)
	}
	return nil
}

// FormatSize renders a byte count as "1.5 MB".
func FormatSize(bytes int) string {
	if bytes <= 0 {
		return "0 B"
	}
	const k = 1024
	sizes := []string{"B", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(k)))
	i = min(i, len(sizes)-1)
	v := float64(bytes) / math.Pow(k, float64(i))
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64) + " " + sizes[i]
}
