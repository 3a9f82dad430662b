package admin

import (
	"bytes"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/xuri/excelize/v2"

	"github.com/delbarteam/delbar-api/internal/db"
	"github.com/delbarteam/delbar-api/internal/models"
)

// ExportCases выгружает каталог анкет в Excel
func (s *AdminService) ExportCases(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, location, category, price, age, status, verified, online, created_at
		FROM cases
		ORDER BY id ASC
	`)
	if err != nil {
		log.Printf("Ошибка запроса анкет для выгрузки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка выгрузки анкет"})
	}
	defer rows.Close()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"ID", "Имя", "Город", "Категория", "Цена", "Возраст", "Статус", "Проверена", "Онлайн", "Создана"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for rows.Next() {
		var cs models.Case
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.Location, &cs.Category, &cs.Price,
			&cs.Age, &cs.Status, &cs.Verified, &cs.Online, &cs.CreatedAt); err != nil {
			log.Printf("Ошибка сканирования анкеты: %v", err)
			continue
		}

		values := []any{cs.ID, cs.Name, cs.Location, cs.Category, cs.Price, cs.Age,
			cs.Status, cs.Verified, cs.Online, cs.CreatedAt.Format("2006-01-02 15:04")}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	return s.sendXLSX(c, f, "cases")
}

// ExportVerifications выгружает заявки на проверку в Excel
func (s *AdminService) ExportVerifications(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT id, case_id, full_name, national_id, phone_number, status, created_at
		FROM verification_requests
		ORDER BY created_at DESC
	`)
	if err != nil {
		log.Printf("Ошибка запроса заявок для выгрузки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка выгрузки заявок"})
	}
	defer rows.Close()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"ID", "Анкета", "Полное имя", "Национальный код", "Телефон", "Статус", "Создана"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for rows.Next() {
		var r models.VerificationRequest
		if err := rows.Scan(&r.ID, &r.CaseID, &r.FullName, &r.NationalID, &r.PhoneNumber, &r.Status, &r.CreatedAt); err != nil {
			log.Printf("Ошибка сканирования заявки: %v", err)
			continue
		}

		values := []any{r.ID, r.CaseID, r.FullName, r.NationalID, r.PhoneNumber,
			r.Status, r.CreatedAt.Format("2006-01-02 15:04")}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	return s.sendXLSX(c, f, "verifications")
}

func (s *AdminService) sendXLSX(c fiber.Ctx, f *excelize.File, prefix string) error {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		log.Printf("Ошибка записи Excel файла: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка формирования файла"})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", xlsxFileName(prefix))
	return c.Send(buf.Bytes())
}
