package controller

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/ppdb/registrants/dto"
	helper "ppdb_backend/internals/helpers"
)

const exportSheet = "Pendaftar"

var exportHeaders = []string{
	"No. Pendaftaran", "Nama Lengkap", "L/P", "Tempat Lahir", "Tanggal Lahir",
	"NIK", "NISN", "Jalur", "Jenjang", "Status", "No. WhatsApp", "Email",
	"Asal Sekolah", "Nama Ayah", "Nama Ibu", "Alamat", "Tanggal Kirim",
}

// BuildRegistrantWorkbook menyusun satu sheet berisi daftar pendaftar.
func BuildRegistrantWorkbook(rows []dto.RegistrantListItem) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, r := range rows {
		birth := ""
		if r.BirthDate != nil {
			birth = r.BirthDate.Format(dto.DateLayout)
		}
		submitted := ""
		if r.SubmittedAt != nil {
			submitted = r.SubmittedAt.In(wib).Format("2006-01-02 15:04")
		}
		values := []any{
			r.RegistrationNumber, r.FullName, r.Gender, r.BirthPlace, birth,
			r.NIK, r.NISN, r.JalurName, r.JenjangName, constants.RegistrantStatusLabel[r.Status],
			r.Phone, r.Email, r.PreviousSchool, r.FatherName, r.MotherName, r.Address, submitted,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 20)
	_ = f.SetColWidth(exportSheet, "B", "B", 30)
	_ = f.SetColWidth(exportSheet, "P", "P", 40)
	return f, nil
}

var wib = time.FixedZone("WIB", 7*3600)

// GET /api/a/registrants/export (filter sama dengan list)
func (h *RegistrantController) Export(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ParseFiber(c, "created_at", "asc", helper.ExportOpts)
	p.All = true

	rows, _, err := h.Svc.List(c.UserContext(), f, p)
	if err != nil {
		return registrantError(c, err)
	}
	wb, err := BuildRegistrantWorkbook(rows)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat file export")
	}
	defer wb.Close()

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat file export")
	}

	name := fmt.Sprintf("pendaftar_%s.xlsx", time.Now().In(wib).Format("20060102_1504"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(buf.Bytes())
}
