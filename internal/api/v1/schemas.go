package apiv1

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/validation"
)

// Tolerance between a declared total and the sum of monthly values.
const TotalAmountTolerance = 0.01

const dateLayout = "2006-01-02"

func init() {
	validation.RegisterStructRules(submitEntryRules, SubmitEntryRequest{})
	validation.RegisterStructRules(reviewRules, ReviewRequest{})
	validation.RegisterStructRules(uploadRules, FileUploadMetadata{})
	validation.RegisterStructRules(dateRangeRules, EntryListQuery{})
}

// CalculateRequest is the body of POST /carbon/calculate.
type CalculateRequest struct {
	PageKey     string             `json:"page_key" validate:"required"`
	MonthlyData map[string]float64 `json:"monthly_data" validate:"required,dive,keys,month,endkeys,gte=0"`
	Year        int                `json:"year" validate:"required,gte=2020,lte=2100"`
}

// CalculateResponse mirrors carbon.Result on the wire.
type CalculateResponse struct {
	TotalEmission   float64            `json:"total_emission"`
	MonthlyEmission map[string]float64 `json:"monthly_emission"`
	EmissionFactor  float64            `json:"emission_factor"`
	Formula         string             `json:"formula"`
}

// SubmitEntryRequest is the body of POST /entries/submit.
type SubmitEntryRequest struct {
	PageKey      string             `json:"page_key" validate:"required"`
	PeriodYear   int                `json:"period_year" validate:"required,gte=2020,lte=2100"`
	Unit         string             `json:"unit" validate:"required,max=50"`
	Monthly      map[string]float64 `json:"monthly" validate:"omitempty,dive,keys,month,endkeys,gte=0"`
	TotalAmount  *float64           `json:"total_amount,omitempty" validate:"omitempty,gte=0"`
	Notes        *string            `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Payload      map[string]any     `json:"payload,omitempty"`
	ExtraPayload map[string]any     `json:"extraPayload,omitempty"`
	Status       string             `json:"status,omitempty" validate:"omitempty,oneof=draft submitted approved rejected needs_fix"`
}

// SubmitEntryResponse is returned with 201.
type SubmitEntryResponse struct {
	EntryID string `json:"entry_id"`
}

// UpdateEntryRequest is the body of PUT /entries/:id. Absent fields stay untouched.
type UpdateEntryRequest struct {
	Unit         *string            `json:"unit,omitempty" validate:"omitempty,min=1,max=50"`
	Monthly      map[string]float64 `json:"monthly,omitempty" validate:"omitempty,dive,keys,month,endkeys,gte=0"`
	Notes        *string            `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Payload      map[string]any     `json:"payload,omitempty"`
	ExtraPayload map[string]any     `json:"extraPayload,omitempty"`
	Status       *string            `json:"status,omitempty" validate:"omitempty,oneof=draft submitted approved rejected needs_fix"`
}

// UpdateEntryResponse lists the columns that changed.
type UpdateEntryResponse struct {
	EntryID       string   `json:"entry_id"`
	UpdatedFields []string `json:"updated_fields"`
}

// FileUploadMetadata holds the non-file parts of POST /files/upload.
type FileUploadMetadata struct {
	PageKey    string  `form:"page_key" validate:"required"`
	PeriodYear int     `form:"period_year" validate:"required,gte=2020,lte=2100"`
	FileType   string  `form:"file_type" validate:"required,oneof=msds usage_evidence other heat_value_evidence annual_evidence nameplate_evidence"`
	Month      *int    `form:"month" validate:"omitempty,gte=1,lte=12"`
	EntryID    *string `form:"entry_id" validate:"omitempty,uuid"`
	RecordID   *string `form:"record_id" validate:"omitempty,max=100"`
	Standard   string  `form:"standard" validate:"required,oneof=64 67"`
}

// FileUploadResponse is returned with 201.
type FileUploadResponse struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

// FileDeleteResponse is returned by DELETE /files/:id.
type FileDeleteResponse struct {
	FileID string `json:"file_id"`
}

// ReviewRequest is the body of POST /admin/entries/:id/review.
type ReviewRequest struct {
	Status           string   `json:"status" validate:"required,oneof=approved rejected needs_fix"`
	Note             string   `json:"note" validate:"max=1000"`
	RequestedChanges []string `json:"requested_changes,omitempty" validate:"omitempty,max=50,dive,max=200"`
}

// BulkUserUpdateRequest is the body of PUT /admin/users/bulk-update.
type BulkUserUpdateRequest struct {
	UserIDs  []string `json:"user_ids" validate:"required,min=1,max=100,dive,required"`
	IsActive *bool    `json:"is_active" validate:"required"`
}

// BulkUserUpdateResponse reports how many profiles changed.
type BulkUserUpdateResponse struct {
	UpdatedCount int64    `json:"updated_count"`
	UserIDs      []string `json:"user_ids"`
}

// EntryListQuery holds the query string of the entry listing endpoints.
type EntryListQuery struct {
	FromDate string `query:"from_date" validate:"omitempty,datetime=2006-01-02"`
	ToDate   string `query:"to_date" validate:"omitempty,datetime=2006-01-02"`
	Category string `query:"category" validate:"omitempty,max=100"`
	PageKey  string `query:"page_key" validate:"omitempty,max=100"`
	Status   string `query:"status" validate:"omitempty,oneof=draft submitted approved rejected needs_fix"`
	Page     int    `query:"page" validate:"gte=1"`
	PageSize int    `query:"page_size" validate:"gte=1,lte=100"`
}

// Pagination is attached to list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination computes the page count for a total.
func NewPagination(page, pageSize int, total int64) Pagination {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: pages}
}

// Offset returns the row offset for the query page.
func (q EntryListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

func submitEntryRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(SubmitEntryRequest)
	if req.TotalAmount == nil {
		return
	}
	var sum float64
	for _, v := range req.Monthly {
		sum += v
	}
	if math.Abs(sum-*req.TotalAmount) > TotalAmountTolerance {
		sl.ReportError(req.TotalAmount, "total_amount", "TotalAmount", "total_amount", strconv.FormatFloat(sum, 'f', 2, 64))
	}
}

func reviewRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(ReviewRequest)
	if req.Status != "rejected" && req.Status != "needs_fix" {
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		sl.ReportError(req.Note, "note", "Note", "required_if", "status "+req.Status)
	}
}

func uploadRules(sl validator.StructLevel) {
	meta := sl.Current().Interface().(FileUploadMetadata)
	if meta.FileType == "usage_evidence" && meta.Month == nil {
		sl.ReportError(meta.Month, "month", "Month", "required_if", "file_type usage_evidence")
	}
}

func dateRangeRules(sl validator.StructLevel) {
	q := sl.Current().Interface().(EntryListQuery)
	if q.FromDate == "" || q.ToDate == "" {
		return
	}
	from, err1 := time.Parse(dateLayout, q.FromDate)
	to, err2 := time.Parse(dateLayout, q.ToDate)
	if err1 != nil || err2 != nil {
		return
	}
	if to.Before(from) {
		sl.ReportError(q.ToDate, "to_date", "ToDate", "gtefield", "from_date")
	}
}

// MonthlyValues converts validated month keys to integers. Keys that do
// not parse are skipped; Validate rejects them beforehand.
func MonthlyValues(in map[string]float64) map[int]float64 {
	if in == nil {
		return nil
	}
	out := make(map[int]float64, len(in))
	for k, v := range in {
		if m, ok := validation.MonthKey(k); ok {
			out[m] = v
		}
	}
	return out
}

// MonthlyKeys converts integer months back to wire keys.
func MonthlyKeys(in map[int]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for m, v := range in {
		out[strconv.Itoa(m)] = v
	}
	return out
}
