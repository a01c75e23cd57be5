package report

import (
	"fmt"

	"assettrack-backend/internal/database"
	"assettrack-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

var assetColumns = []string{"Asset Tag", "Name", "Serial", "Model", "Manufacturer", "Status", "Assigned To", "Purchase Cost", "Warranty End"}

// BuildAssetRegister renders the full asset list, with the current holder of
// each deployed asset, as an XLSX workbook.
func BuildAssetRegister() (*excelize.File, error) {
	var assets []models.Asset
	if err := database.DB.Order("asset_tag asc").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("assets could not be loaded: %w", err)
	}

	// One query for all open asset assignments instead of one per row.
	var open []models.Assignment
	err := database.DB.
		Where("stock_kind = ? AND closed_at IS NULL", models.StockAsset).
		Find(&open).Error
	if err != nil {
		return nil, fmt.Errorf("open assignments could not be loaded: %w", err)
	}
	holders := make(map[uint]string, len(open))
	for _, a := range open {
		holders[a.StockID] = fmt.Sprintf("%s (%s)", a.AssigneeName, a.AssigneeKind)
	}

	f := excelize.NewFile()
	const sheet = "Assets"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range assetColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return nil, fmt.Errorf("header could not be written: %w", err)
		}
	}

	for row, asset := range assets {
		warranty := ""
		if asset.WarrantyEnd != nil {
			warranty = asset.WarrantyEnd.Format("2006-01-02")
		}
		values := []interface{}{
			asset.AssetTag,
			asset.Name,
			asset.Serial,
			asset.Model,
			asset.Manufacturer,
			string(asset.Status),
			holders[asset.ID],
			asset.PurchaseCost.StringFixed(2),
			warranty,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("row could not be written: %w", err)
			}
		}
	}

	return f, nil
}

// GET /api/reports/assets.xlsx
func AssetRegisterHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := BuildAssetRegister()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Report could not be generated")
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Report could not be serialized")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="asset-register.xlsx"`)
		return c.Send(buf.Bytes())
	}
}
