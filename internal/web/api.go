package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phyten/docblocker/internal/config"
	"github.com/phyten/docblocker/internal/documenter"
	"github.com/phyten/docblocker/internal/editor"
	"github.com/phyten/docblocker/internal/engine"
	"github.com/phyten/docblocker/internal/engine/opts"
	"github.com/phyten/docblocker/internal/matcher"
	"github.com/phyten/docblocker/internal/model"
	"github.com/phyten/docblocker/internal/output"
)

const maxBodyBytes = 64 << 10

// documentRequest is the body of POST /api/document.
type documentRequest struct {
	Trigger string    `json:"trigger" validate:"required,max=4096,singleline"`
	Target  string    `json:"target" validate:"max=4096,singleline"`
	Col     *int      `json:"col" validate:"omitempty,min=0,max=4096"`
	Gap     *bool     `json:"gap"`
	Extra   *[]string `json:"extra" validate:"omitempty,max=32,dive,max=512,singleline"`
}

// documentResponse is a snippet report plus the two lines after insertion.
type documentResponse struct {
	output.SnippetReport
	Result string `json:"result,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	return v
}

// validateRequest flattens validator errors into one message.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.TrimPrefix(e.Namespace(), "documentRequest.")
		if e.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, e.Tag(), e.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, e.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	securityHeaders(w)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func documentHandler(settings config.Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
			return
		}
		var req documentRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
			return
		}
		if err := validateRequest(req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		resp, err := document(req, config.WithOverrides(settings, config.Config{Gap: req.Gap, Extra: req.Extra}))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// document runs the documenter over a two line buffer: the trigger line and
// the declaration below it.
func document(req documentRequest, src config.Source) (documentResponse, error) {
	buf := editor.NewBuffer(req.Trigger + "\n" + req.Target)
	col := len(req.Trigger)
	if req.Col != nil && *req.Col < col {
		col = *req.Col
	}
	reg := matcher.PHP(model.DefaultPlaceholders())
	d, err := documenter.New(buf, src, reg, editor.Position{Line: 0, Col: col})
	if err != nil {
		return documentResponse{}, err
	}
	if !d.IsValid() {
		return documentResponse{}, nil
	}
	m := d.Describe()
	s, err := d.BuildSnippet(m.Doc)
	if err != nil {
		return documentResponse{}, err
	}
	if err := d.InsertSnippet(s); err != nil {
		return documentResponse{}, err
	}
	return documentResponse{
		SnippetReport: output.NewSnippetReport(m.Kind, m.Name, m.Doc, s),
		Result:        buf.Text(),
	}, nil
}

func scanHandler(o Options) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
			return
		}
		scanOpts, err := opts.ApplyWebQueryToOptions(opts.Defaults(o.RepoDir), r.URL.Query())
		if err == nil {
			err = opts.NormalizeAndValidate(&scanOpts)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		scanOpts.Runner = o.Runner
		res, err := engine.Run(r.Context(), scanOpts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
}
