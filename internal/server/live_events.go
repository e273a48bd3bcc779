package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/tracesphere/campusasset/internal/approval/domain"
	assetdomain "github.com/tracesphere/campusasset/internal/asset/domain"
	procurementdomain "github.com/tracesphere/campusasset/internal/procurement/domain"
)

// The live endpoints push the full record list on every change rather
// than deltas. Clients replace their local copy wholesale, which keeps
// reconnects trivial.

func (s *Server) StreamAssets(c *gin.Context) {
	updates, cancel := s.assetSvc.Watch()
	defer cancel()

	initial := s.assetSvc.List(c.Request.Context(), assetdomain.Query{})
	streamRecords(c, initial.Records, updates)
}

func (s *Server) StreamApprovals(c *gin.Context) {
	updates, cancel := s.approvalSvc.Watch()
	defer cancel()

	initial := s.approvalSvc.List(c.Request.Context(), approvaldomain.Query{})
	streamRecords(c, initial.Records, updates)
}

func (s *Server) StreamPurchaseOrders(c *gin.Context) {
	updates, cancel := s.procurementSvc.Watch()
	defer cancel()

	initial := s.procurementSvc.List(c.Request.Context(), procurementdomain.Query{})
	streamRecords(c, initial.Records, updates)
}

func streamRecords[T any](c *gin.Context, initial []T, updates <-chan []T) {
	writer := c.Writer
	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := writer.(http.Flusher)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}

	if err := writeRecordsEvent(writer, initial); err != nil {
		return
	}
	flusher.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case records, open := <-updates:
			if !open {
				return
			}
			if err := writeRecordsEvent(writer, records); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeRecordsEvent[T any](w io.Writer, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
