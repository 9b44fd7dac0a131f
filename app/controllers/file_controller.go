package controllers

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	apiv1 "github.com/ManuelReschke/EnergyLedger/internal/api/v1"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/evidence"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/upload"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/usercontext"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/validation"
)

// HandleUploadFile stores one evidence file sent as multipart/form-data.
func (h *Handlers) HandleUploadFile(c *fiber.Ctx) error {
	var errs validation.Collector
	meta := parseUploadMetadata(c, &errs)
	if err := errs.Merge(validation.Validate(meta)); err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		errs.Add("file", "required", "file is required")
	}
	if err := errs.Err(); err != nil {
		return err
	}

	f, err := fh.Open()
	if err != nil {
		return apperror.FileUpload("failed to read uploaded file", err)
	}
	defer f.Close()

	// One byte more than allowed so oversized files are detected.
	data, err := io.ReadAll(io.LimitReader(f, upload.MaxFileSize+1))
	if err != nil {
		return apperror.FileUpload("failed to read uploaded file", err)
	}

	res, err := h.Files.Upload(c.UserContext(), usercontext.GetPrincipal(c), evidence.UploadInput{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
		PageKey:     meta.PageKey,
		PeriodYear:  meta.PeriodYear,
		FileType:    models.EvidenceFileType(meta.FileType),
		Month:       meta.Month,
		EntryID:     meta.EntryID,
		RecordID:    meta.RecordID,
		Standard:    meta.Standard,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(apiv1.FileUploadResponse{
		FileID:   res.File.ID,
		FilePath: res.File.FilePath,
		FileName: res.File.FileName,
		FileSize: res.File.FileSize,
	})
}

func (h *Handlers) HandleDeleteFile(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Files.Delete(c.UserContext(), usercontext.GetPrincipal(c), id); err != nil {
		return err
	}
	return c.JSON(apiv1.FileDeleteResponse{FileID: id})
}

// HandleListFiles lists the evidence files attached to ?entry_id=.
func (h *Handlers) HandleListFiles(c *fiber.Ctx) error {
	entryID := strings.TrimSpace(c.Query("entry_id"))
	if entryID == "" {
		return apperror.InvalidField("entry_id", "required", "entry_id is required")
	}
	files, err := h.Files.ListByEntry(c.UserContext(), usercontext.GetPrincipal(c), entryID)
	if err != nil {
		return err
	}
	if files == nil {
		files = []models.EntryFile{}
	}
	return c.JSON(fiber.Map{"files": files})
}

// parseUploadMetadata reads the form fields. Values that are not integers
// are reported to errs and left unset.
func parseUploadMetadata(c *fiber.Ctx, errs *validation.Collector) apiv1.FileUploadMetadata {
	meta := apiv1.FileUploadMetadata{
		PageKey:  strings.TrimSpace(c.FormValue("page_key")),
		FileType: strings.TrimSpace(c.FormValue("file_type")),
		Standard: strings.TrimSpace(c.FormValue("standard")),
	}

	if v := strings.TrimSpace(c.FormValue("period_year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			errs.Add("period_year", "type", "period_year must be an integer")
		}
		meta.PeriodYear = year
	}
	if v := strings.TrimSpace(c.FormValue("month")); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			errs.Add("month", "type", "month must be an integer")
		} else {
			meta.Month = &month
		}
	}
	if v := strings.TrimSpace(c.FormValue("entry_id")); v != "" {
		meta.EntryID = &v
	}
	if v := strings.TrimSpace(c.FormValue("record_id")); v != "" {
		meta.RecordID = &v
	}
	return meta
}
