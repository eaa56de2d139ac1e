package agentboot

import (
	"time"

	"github.com/SaiNageswarS/booking-agent/booking"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

type ChunkType string

const (
	ChunkAnswer   ChunkType = "answer"
	ChunkComplete ChunkType = "complete"
	ChunkError    ChunkType = "error"
)

// StreamChunk is one event of a streamed turn.
type StreamChunk struct {
	Type      ChunkType      `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Intent    booking.Intent `json:"intent,omitempty"`
	Content   string         `json:"content,omitempty"`
	Complete  *TurnResult    `json:"complete,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
}

// ProgressReporter is an interface for reporting turn progress
type ProgressReporter interface {
	Send(event *StreamChunk) error
}

// NoOpProgressReporter implements ProgressReporter with no-op operations
type NoOpProgressReporter struct{}

func (r *NoOpProgressReporter) Send(event *StreamChunk) error {
	return nil
}

// FuncProgressReporter adapts a function, e.g. an SSE writer.
type FuncProgressReporter func(event *StreamChunk) error

func (f FuncProgressReporter) Send(event *StreamChunk) error {
	return f(event)
}

// GrpcProgressReporter implements ProgressReporter for gRPC streaming
type GrpcProgressReporter struct {
	Stream grpc.ServerStreamingServer[structpb.Struct]
}

func (r *GrpcProgressReporter) Send(event *StreamChunk) error {
	msg, err := event.Struct()
	if err != nil {
		return err
	}
	return r.Stream.Send(msg)
}

// Struct converts the chunk to its wire form.
func (c *StreamChunk) Struct() (*structpb.Struct, error) {
	fields := map[string]any{
		"type":      string(c.Type),
		"timestamp": float64(c.Timestamp),
	}
	if c.Intent != "" {
		fields["intent"] = string(c.Intent)
	}
	if c.Content != "" {
		fields["content"] = c.Content
	}
	if c.ErrorCode != "" {
		fields["error_code"] = c.ErrorCode
	}
	if c.Complete != nil {
		fields["complete"] = c.Complete.Fields()
	}
	return structpb.NewStruct(fields)
}

func NewAnswerChunk(intent booking.Intent, content string) *StreamChunk {
	return &StreamChunk{Type: ChunkAnswer, Timestamp: time.Now().UnixMilli(), Intent: intent, Content: content}
}

func NewStreamComplete(result *TurnResult) *StreamChunk {
	return &StreamChunk{Type: ChunkComplete, Timestamp: time.Now().UnixMilli(), Complete: result}
}

// NewStreamError creates an error chunk. message is shown to the customer.
func NewStreamError(message, code string) *StreamChunk {
	return &StreamChunk{Type: ChunkError, Timestamp: time.Now().UnixMilli(), Content: message, ErrorCode: code}
}
