package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iamnno/IES/internal/subscribe"
	logpkg "github.com/iamnno/IES/pkg/log"
)

// handleSubscribeSSE attaches the caller as a live subscriber for one
// owner's records and streams each delivery as an SSE data event. Only
// records stored after the subscription is registered are delivered.
//
// Optional query parameters: filter (CEL expression evaluated per
// record) and buf (delivery buffer length).
func (s *Server) handleSubscribeSSE(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["userID"]
	ownerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ownerID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id "+strconv.Quote(raw))
		return
	}

	filter, err := subscribe.NewFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter: "+err.Error())
		return
	}

	buf := parseBufLen(r.URL.Query().Get("buf"))
	if buf == 0 {
		buf = s.rt.Config().Subscribe.BufLen
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := subscribe.NewSubscriber(buf, filter)
	reg := s.rt.Registry()
	reg.Subscribe(ownerID, sub)
	defer reg.Unsubscribe(ownerID, sub)

	s.logger.Debug("subscriber attached", logpkg.Int64("owner", ownerID))
	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done():
			return
		case payload := <-sub.Recv():
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := w.Write(payload); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
