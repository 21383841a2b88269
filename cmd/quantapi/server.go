package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chandan-cmd-dev/quant-go/quant"
	"github.com/chandan-cmd-dev/quant-go/quantfmt"
	"github.com/chandan-cmd-dev/quant-go/quantsec"
	"github.com/chandan-cmd-dev/quant-go/store"
	"github.com/chandan-cmd-dev/quant-go/units"
)

// Media types, most specific first: negotiate matches by substring.
const (
	mtSealed = "application/vnd.quant-sec"
	mtBinary = "application/vnd.quant"
	mtJSON   = "application/json"
)

const maxBody = 1 << 20

type server struct {
	store   store.Store
	reg     *units.Registry
	log     *slog.Logger
	metrics *metrics

	kr  quantsec.Keyring // nil disables sealed bodies
	alg quantsec.Alg
	kid string
}

type Option func(*server)

func WithLogger(l *slog.Logger) Option { return func(s *server) { s.log = l } }
func WithRegistry(r *units.Registry) Option { return func(s *server) { s.reg = r } }
func WithSealing(kr quantsec.Keyring, alg quantsec.Alg, kid string) Option {
	return func(s *server) { s.kr, s.alg, s.kid = kr, alg, kid }
}

func newServer(st store.Store, opts ...Option) *server {
	s := &server{store: st, log: slog.Default(), metrics: newMetrics()}
	for _, o := range opts {
		o(s)
	}
	if s.reg == nil {
		s.reg = units.Default()
	}
	return s
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	s.handle(mux, "POST /records", s.handleCreate)
	s.handle(mux, "GET /records", s.handleList)
	s.handle(mux, "GET /records/{id}", s.handleGet)
	s.handle(mux, "DELETE /records/{id}", s.handleDelete)
	s.handle(mux, "GET /convert", s.handleConvert)
	s.handle(mux, "GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("GET /metrics", s.metrics.handler())
	return mux
}

// handle registers h under pattern, logging and counting every request.
func (s *server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		d := time.Since(start)
		s.metrics.observe(pattern, rec.status, d)
		s.log.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", d)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// httpError writes msg with the status that err maps to.
func (s *server) httpError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		msg += ": " + err.Error()
	}
	if status >= http.StatusInternalServerError {
		s.log.Error(msg)
	}
	http.Error(w, msg, status)
}

func storeStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrExists):
		return http.StatusConflict
	case errors.Is(err, store.ErrBadRecord):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		s.httpError(w, http.StatusBadRequest, "read body", err)
		return
	}
	ct := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	var doc any
	switch {
	case strings.HasPrefix(ct, mtJSON):
		var raw any
		if err := quant.UnmarshalJSONWithComments(body, &raw); err != nil {
			s.httpError(w, http.StatusBadRequest, "json decode", err)
			return
		}
		if doc, err = s.reg.Resolve(raw); err != nil {
			s.httpError(w, http.StatusBadRequest, "json value", err)
			return
		}
	case strings.HasPrefix(ct, mtSealed):
		if s.kr == nil {
			s.httpError(w, http.StatusUnsupportedMediaType, "sealed bodies disabled; start with -keyfile", nil)
			return
		}
		v, hdr, err := quantsec.Open(body, s.kr)
		if err != nil {
			s.httpError(w, http.StatusBadRequest, "open sealed body", err)
			return
		}
		if !aadMatches(hdr.Extra, r.Method, r.URL.Path) {
			s.httpError(w, http.StatusBadRequest, "sealed header does not match request", nil)
			return
		}
		doc = v
	case strings.HasPrefix(ct, mtBinary):
		if doc, err = quant.DecodeBinary(body); err != nil {
			s.httpError(w, http.StatusBadRequest, "binary decode", err)
			return
		}
	default:
		s.httpError(w, http.StatusUnsupportedMediaType, "unsupported Content-Type", nil)
		return
	}

	rec, err := recordFrom(doc)
	if err != nil {
		s.httpError(w, http.StatusBadRequest, "record", err)
		return
	}
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.httpError(w, storeStatus(err), "store", err)
		return
	}
	s.metrics.stored.Inc()
	s.log.Debug("record stored", "id", rec.ID, "kind", rec.Envelope().Meta.Schema)
	w.Header().Set("Location", "/records/"+rec.ID.String())
	s.writeRecord(w, r, http.StatusCreated, rec)
}

// recordFrom accepts a record envelope, a bare value, or an object with "value"
// and optional "label", "id" and "created" members.
func recordFrom(doc any) (store.Record, error) {
	var rec store.Record
	switch d := doc.(type) {
	case quant.Envelope:
		var err error
		if rec, err = store.FromEnvelope(d); err != nil {
			return store.Record{}, err
		}
	case quant.Value:
		rec.Value = d
	case map[string]any:
		v, ok := d["value"].(quant.Value)
		if !ok {
			return store.Record{}, fmt.Errorf("%w: missing value", store.ErrBadRecord)
		}
		rec.Value = v
		rec.Label, _ = d["label"].(string)
		switch id := d["id"].(type) {
		case string:
			u, err := uuid.Parse(id)
			if err != nil {
				return store.Record{}, fmt.Errorf("%w: id: %w", store.ErrBadRecord, err)
			}
			rec.ID = u
		case uuid.UUID:
			rec.ID = id
		}
		switch c := d["created"].(type) {
		case string:
			t, err := time.Parse(time.RFC3339Nano, c)
			if err != nil {
				return store.Record{}, fmt.Errorf("%w: created: %w", store.ErrBadRecord, err)
			}
			rec.Created = t
		case time.Time:
			rec.Created = c
		}
	default:
		return store.Record{}, fmt.Errorf("%w: unexpected %T", store.ErrBadRecord, doc)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Created.IsZero() {
		rec.Created = time.Now().UTC()
	}
	return rec, nil
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.httpError(w, http.StatusBadRequest, "bad id", err)
		return
	}
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.httpError(w, storeStatus(err), "get", err)
		return
	}
	s.writeRecord(w, r, http.StatusOK, rec)
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.httpError(w, storeStatus(err), "list", err)
		return
	}
	out := make([]recordJSON, len(recs))
	for i, rec := range recs {
		out[i] = toJSON(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.httpError(w, http.StatusBadRequest, "bad id", err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.httpError(w, storeStatus(err), "delete", err)
		return
	}
	s.metrics.deleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// handleConvert answers GET /convert?q=1 mi&to=ft. scale=1 reads q as a
// temperature.
func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q, err := s.reg.ParseQuantity(qs.Get("q"))
	if err != nil {
		s.httpError(w, http.StatusBadRequest, "q", err)
		return
	}
	to, err := s.reg.ParseUnit(qs.Get("to"))
	if err != nil {
		s.httpError(w, http.StatusBadRequest, "to", err)
		return
	}
	var v quant.Value
	if qs.Get("scale") == "1" || qs.Get("scale") == "true" {
		t, terr := quant.NewTemperature(q.Number(), q.Unit())
		if terr != nil {
			s.httpError(w, http.StatusBadRequest, "scale", terr)
			return
		}
		v, err = t.WithUncertainty(q.UncertaintyNumber()).OnScale(to)
	} else {
		v, err = q.To(to)
	}
	if err != nil {
		s.httpError(w, http.StatusUnprocessableEntity, "convert", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"value": v,
		"text":  quantfmt.Format(v, quantfmt.WithPlain()),
	})
}

type recordJSON struct {
	ID      uuid.UUID   `json:"id"`
	Label   string      `json:"label,omitempty"`
	Value   quant.Value `json:"value"`
	Text    string      `json:"text"`
	Created time.Time   `json:"created"`
}

func toJSON(rec store.Record) recordJSON {
	return recordJSON{
		ID:      rec.ID,
		Label:   rec.Label,
		Value:   rec.Value,
		Text:    quantfmt.Format(rec.Value, quantfmt.WithPlain()),
		Created: rec.Created,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	js, err := quant.MarshalJSONCompat(v, true)
	if err != nil {
		http.Error(w, "marshal json: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", mtJSON)
	w.WriteHeader(status)
	_, _ = w.Write(js)
}

// writeRecord answers in the format the Accept header asks for, JSON by default.
func (s *server) writeRecord(w http.ResponseWriter, r *http.Request, status int, rec store.Record) {
	switch negotiate(r.Header.Get("Accept"), mtSealed, mtBinary, mtJSON) {
	case mtSealed:
		if s.kr == nil {
			s.httpError(w, http.StatusNotAcceptable, "sealed bodies disabled", nil)
			return
		}
		b, err := store.Encode(rec)
		if err != nil {
			s.httpError(w, http.StatusInternalServerError, "encode", err)
			return
		}
		hdr := quantsec.Header{Alg: s.alg, KeyID: s.kid, Extra: buildAAD(r.Method, "/records/"+rec.ID.String())}
		sealed, err := quantsec.SealBytes(b, hdr, s.kr)
		if err != nil {
			s.httpError(w, http.StatusInternalServerError, "seal", err)
			return
		}
		w.Header().Set("Content-Type", mtSealed)
		w.WriteHeader(status)
		_, _ = w.Write(sealed)
	case mtBinary:
		b, err := store.Encode(rec)
		if err != nil {
			s.httpError(w, http.StatusInternalServerError, "encode", err)
			return
		}
		w.Header().Set("Content-Type", mtBinary)
		w.WriteHeader(status)
		_, _ = w.Write(b)
	default:
		writeJSON(w, status, toJSON(rec))
	}
}

func negotiate(accept string, supported ...string) string {
	accept = strings.ToLower(accept)
	for _, s := range supported {
		if strings.Contains(accept, s) {
			return s
		}
	}
	return supported[len(supported)-1]
}

func buildAAD(method, path string) map[string]string {
	return map[string]string{
		"m":  method,
		"p":  path,
		"ts": time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// aadMatches checks the method and path a client bound into a sealed body. A body
// without them is accepted.
func aadMatches(extra map[string]string, method, path string) bool {
	m, hasM := extra["m"]
	p, hasP := extra["p"]
	if !hasM && !hasP {
		return true
	}
	return m == method && p == path
}
