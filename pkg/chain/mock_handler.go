package chain

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
)

// NewMockHandler serves src over the explorer API routes.
func NewMockHandler(src Source) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/blockchain-info", func(w http.ResponseWriter, r *http.Request) {
		info, err := src.Info(r.Context())
		respond(w, r, info, err)
	})

	mux.HandleFunc("GET /api/blocks/{start}/{end}", func(w http.ResponseWriter, r *http.Request) {
		start, err1 := strconv.Atoi(r.PathValue("start"))
		end, err2 := strconv.Atoi(r.PathValue("end"))
		if err := errors.Join(err1, err2); err != nil {
			http.Error(w, "invalid height range", http.StatusBadRequest)

			return
		}

		blocks, err := src.Blocks(r.Context(), start, end)
		respond(w, r, nonNil(blocks), err)
	})

	mux.HandleFunc("GET /api/address/{address}", func(w http.ResponseWriter, r *http.Request) {
		a, err := src.AddressSummary(r.Context(), r.PathValue("address"))
		respond(w, r, a, err)
	})

	mux.HandleFunc("GET /api/address/{address}/transactions", func(w http.ResponseWriter, r *http.Request) {
		page, err1 := queryInt(r, "page", 0)
		take, err2 := queryInt(r, "take", 200)
		if err := errors.Join(err1, err2); err != nil {
			http.Error(w, "invalid page query", http.StatusBadRequest)

			return
		}

		txs, err := src.AddressTxs(r.Context(), r.PathValue("address"), page, take)
		respond(w, r, nonNil(txs), err)
	})

	mux.HandleFunc("GET /api/address/{address}/utxos", func(w http.ResponseWriter, r *http.Request) {
		utxos, err := src.AddressUtxos(r.Context(), r.PathValue("address"))
		respond(w, r, nonNil(utxos), err)
	})

	return mux
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err //nolint:wrapcheck // Reported as a bad request.
	}

	if n < 0 {
		return 0, strconv.ErrRange
	}

	return n, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

func respond[T any](w http.ResponseWriter, r *http.Request, data T, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			status = http.StatusNotFound
		}

		slog.WarnContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Any("err", err),
		)
		http.Error(w, err.Error(), status)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(Envelope[T]{Data: data}); err != nil {
		slog.WarnContext(r.Context(), "encode response", slog.Any("err", err))
	}

	slog.DebugContext(r.Context(), "served", slog.String("path", r.URL.Path))
}
