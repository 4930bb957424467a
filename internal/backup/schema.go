package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"

	"github.com/mrz1836/ledgerbox/internal/entity"
)

// fileSchema mirrors File with pointer fields so that missing keys can be
// told apart from zero values.
type fileSchema struct {
	App           *appSchema      `json:"app" validate:"required"`
	SchemaVersion *string         `json:"schema_version" validate:"required"`
	ExportedAt    *string         `json:"exported_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Owner         *ownerSchema    `json:"owner" validate:"required"`
	Counts        *countsSchema   `json:"counts" validate:"required"`
	Data          *dataSchema     `json:"data" validate:"required"`
	Checksum      *checksumSchema `json:"checksum" validate:"required"`
	Meta          *metaSchema     `json:"meta" validate:"required"`
}

type appSchema struct {
	Name    *string `json:"name" validate:"required"`
	Version *string `json:"version" validate:"required"`
}

type ownerSchema struct {
	UserID *string `json:"user_id" validate:"required,uuid"`
	Phone  *string `json:"phone" validate:"required"`
}

type countsSchema struct {
	Profiles           *int `json:"profiles" validate:"required,min=0"`
	Categories         *int `json:"categories" validate:"required,min=0"`
	Suppliers          *int `json:"suppliers" validate:"required,min=0"`
	Banks              *int `json:"banks" validate:"required,min=0"`
	BankAccounts       *int `json:"bank_accounts" validate:"required,min=0"`
	AccountsPayable    *int `json:"accounts_payable" validate:"required,min=0"`
	AccountsReceivable *int `json:"accounts_receivable" validate:"required,min=0"`
	Transactions       *int `json:"transactions" validate:"required,min=0"`
}

type dataSchema struct {
	Profiles           []json.RawMessage `json:"profiles" validate:"required,dive,json_object"`
	Categories         []json.RawMessage `json:"categories" validate:"required,dive,json_object"`
	Suppliers          []json.RawMessage `json:"suppliers" validate:"required,dive,json_object"`
	Banks              []json.RawMessage `json:"banks" validate:"required,dive,json_object"`
	BankAccounts       []json.RawMessage `json:"bank_accounts" validate:"required,dive,json_object"`
	AccountsPayable    []json.RawMessage `json:"accounts_payable" validate:"required,dive,json_object"`
	AccountsReceivable []json.RawMessage `json:"accounts_receivable" validate:"required,dive,json_object"`
	Transactions       []json.RawMessage `json:"transactions" validate:"required,dive,json_object"`
}

type checksumSchema struct {
	Algo  *string `json:"algo" validate:"required"`
	Value *string `json:"value" validate:"required,len=64,hexadecimal,lowercase"`
}

type metaSchema struct {
	GeneratedBy *string `json:"generated_by" validate:"required"`
	Notes       *string `json:"notes"`
}

// FieldError is one structural diagnostic.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (e FieldError) String() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s=%s", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Rule)
}

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("json_object", isJSONObject)
	return v
}

func isJSONObject(fl validator.FieldLevel) bool {
	raw, ok := fl.Field().Interface().(json.RawMessage)
	if !ok {
		return false
	}
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}

// fieldErrors flattens validator diagnostics, using JSON paths without the
// root struct name.
func fieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "$", Rule: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
		out = append(out, FieldError{Field: ns, Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// unknownDataKeys returns the keys under "data" that are not entity types,
// each with the closest known key.
func unknownDataKeys(rawData json.RawMessage) map[string]string {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(rawData, &keys); err != nil {
		return nil
	}

	unknown := make(map[string]string)
	for key := range keys {
		if _, ok := entity.ParseType(key); ok {
			continue
		}
		unknown[key] = closestType(key)
	}
	return unknown
}

func closestType(key string) string {
	best, bestDist := "", -1
	for _, t := range entity.AllTypes() {
		d := levenshtein.ComputeDistance(key, t.String())
		if bestDist == -1 || d < bestDist {
			best, bestDist = t.String(), d
		}
	}
	if bestDist > len(key)/2+1 {
		return ""
	}
	return best
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
