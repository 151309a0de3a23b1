package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"kakeibo/internal/ledger"
	"kakeibo/internal/services"
	"kakeibo/internal/view"
)

const (
	maxBodyBytes   = 16 << 10
	maxSurfaceSide = 4096
)

// candidateBody accepts the amount as a JSON string or number.
type candidateBody struct {
	Date     string          `json:"date"`
	Amount   json.RawMessage `json:"amount"`
	Category string          `json:"category"`
	Memo     string          `json:"memo"`
}

// ParseCandidate reads an expense from a JSON or form-encoded body. Field
// values are passed through as typed; validation belongs to the ledger.
func ParseCandidate(r *http.Request) (ledger.Candidate, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return ledger.Candidate{}, fmt.Errorf("parse form: %w", err)
		}
		return candidateFromForm(r.PostForm), nil
	default:
		return decodeCandidateJSON(r.Body)
	}
}

func decodeCandidateJSON(body io.Reader) (ledger.Candidate, error) {
	var b candidateBody
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return ledger.Candidate{}, fmt.Errorf("decode body: %w", err)
	}
	amount, err := rawAmount(b.Amount)
	if err != nil {
		return ledger.Candidate{}, err
	}
	return ledger.Candidate{
		Date:     sanitizeInput(b.Date),
		Amount:   amount,
		Category: sanitizeInput(b.Category),
		Memo:     sanitizeInput(b.Memo),
	}, nil
}

// rawAmount keeps the literal text of a number so "1500.5" still fails the
// integer rule downstream instead of being rounded here.
func rawAmount(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode amount: %w", err)
		}
		return sanitizeInput(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errors.New("amount must be a string or a number")
	}
	return n.String(), nil
}

func candidateFromForm(form url.Values) ledger.Candidate {
	return ledger.Candidate{
		Date:     sanitizeInput(form.Get("date")),
		Amount:   sanitizeInput(form.Get("amount")),
		Category: sanitizeInput(form.Get("category")),
		Memo:     sanitizeInput(form.Get("memo")),
	}
}

// ParseViewQuery reads filter criteria and optional chart sizes:
// period, category, pie_width, pie_height, trend_width, trend_height.
func ParseViewQuery(query url.Values) (view.Criteria, services.Surfaces, error) {
	criteria, err := view.ParseCriteria(query.Get("period"), query.Get("category"))
	if err != nil {
		return view.Criteria{}, services.Surfaces{}, err
	}

	surfaces := services.DefaultSurfaces()
	dims := []struct {
		key string
		dst *float64
	}{
		{"pie_width", &surfaces.Pie.Width},
		{"pie_height", &surfaces.Pie.Height},
		{"trend_width", &surfaces.Trend.Width},
		{"trend_height", &surfaces.Trend.Height},
	}
	for _, d := range dims {
		v := strings.TrimSpace(query.Get(d.key))
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n < 0 || n > maxSurfaceSide {
			return view.Criteria{}, services.Surfaces{}, fmt.Errorf("invalid %s %q", d.key, v)
		}
		*d.dst = n
	}
	return criteria, surfaces, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
