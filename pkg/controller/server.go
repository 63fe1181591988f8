package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Seann-Moser/servoclock/pkg/bus"
	"github.com/Seann-Moser/servoclock/pkg/ds3231"
)

// ErrUnknownFace is returned for a face name other than minutes or hours.
var ErrUnknownFace = errors.New("unknown face")

func errUnknownFace(name string) error {
	return errors.Wrapf(ErrUnknownFace, "%q", name)
}

type numberRequest struct {
	Number *int `json:"number"`
}

type dutyRequest struct {
	Duty *int `json:"duty"`
}

type timeRequest struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// Handler serves the remote control API.
func (c *Controller) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", c.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/faces/{face}", c.handleWriteFace).Methods(http.MethodPost)
	api.HandleFunc("/faces/{face}/pins/{pin:[0-9]+}", c.handleSetPin).Methods(http.MethodPost)
	api.HandleFunc("/time", c.handleSetTime).Methods(http.MethodPost)
	return r
}

// Serve runs the API on addr until ctx is cancelled.
func (c *Controller) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	c.logger.Infow("api listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RunAndServe runs the polling loop and, when addr is set, the API. Both stop
// as soon as either fails or ctx is cancelled; the first error is returned.
func (c *Controller) RunAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		return c.Run(ctx)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.Run(gctx)
	})
	g.Go(func() error {
		if err := c.Serve(gctx, addr); err != nil {
			return errors.Wrapf(err, "serve %s", addr)
		}
		return nil
	})
	return g.Wait()
}

func (c *Controller) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.Status())
}

func (c *Controller) handleWriteFace(w http.ResponseWriter, r *http.Request) {
	var req numberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Number == nil {
		http.Error(w, "body must be {\"number\": n}", http.StatusBadRequest)
		return
	}
	c.respond(w, c.WriteFace(mux.Vars(r)["face"], *req.Number))
}

func (c *Controller) handleSetPin(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	pin, err := strconv.Atoi(vars["pin"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req dutyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Duty == nil {
		http.Error(w, "body must be {\"duty\": n}", http.StatusBadRequest)
		return
	}
	c.respond(w, c.SetPin(vars["face"], pin, *req.Duty))
}

func (c *Controller) handleSetTime(w http.ResponseWriter, r *http.Request) {
	var req timeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.respond(w, c.SetTime(ds3231.Time{Hour: req.Hour, Minute: req.Minute, Second: req.Second}))
}

func (c *Controller) respond(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, c.Status())
	case errors.Is(err, ErrUnknownFace):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, bus.ErrConfiguration):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		c.logger.Errorw("api request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
