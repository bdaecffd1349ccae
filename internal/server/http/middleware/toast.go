package middleware

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/petshop/internal/feedback"
)

// ToastHeader carries one JSON encoded toast per header value.
const ToastHeader = "X-Toast"

// Toasts records the toasts raised while serving a request and returns
// them as X-Toast response headers.
func Toasts() gin.HandlerFunc {
	return func(c *gin.Context) {
		recorder := &feedback.Recorder{}
		c.Request = c.Request.WithContext(feedback.WithSink(c.Request.Context(), recorder))

		w := &toastWriter{ResponseWriter: c.Writer, recorder: recorder}
		c.Writer = w
		c.Next()
		w.flushToasts()
	}
}

// toastWriter adds the recorded toasts to the headers right before they
// are sent.
type toastWriter struct {
	gin.ResponseWriter
	recorder *feedback.Recorder
	flushed  bool
}

func (w *toastWriter) flushToasts() {
	if w.flushed || w.ResponseWriter.Written() {
		return
	}
	w.flushed = true
	for _, t := range w.recorder.Toasts() {
		encoded, err := json.Marshal(t)
		if err != nil {
			continue
		}
		w.Header().Add(ToastHeader, string(encoded))
	}
}

func (w *toastWriter) WriteHeaderNow() {
	w.flushToasts()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *toastWriter) Write(data []byte) (int, error) {
	w.flushToasts()
	return w.ResponseWriter.Write(data)
}

func (w *toastWriter) WriteString(s string) (int, error) {
	w.flushToasts()
	return w.ResponseWriter.WriteString(s)
}
