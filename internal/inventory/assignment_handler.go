package inventory

import (
	"errors"
	"time"

	"assettrack-backend/internal/database"
	"assettrack-backend/internal/ledger"
	"assettrack-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CheckoutRequest struct {
	AssigneeID       uint   `json:"assignee_id"`
	AssigneeKind     string `json:"assignee_kind"` // user / location / asset, defaults to user
	Quantity         int    `json:"quantity"`      // defaults to 1
	Notes            string `json:"notes"`
	ExpectedReturnAt string `json:"expected_return_at"` // "2006-01-02", optional
}

type AssignmentResponse struct {
	ID               uint   `json:"id"`
	StockKind        string `json:"stock_kind"`
	StockID          uint   `json:"stock_id"`
	AssigneeKind     string `json:"assignee_kind"`
	AssigneeID       uint   `json:"assignee_id"`
	AssigneeName     string `json:"assignee_name"`
	Quantity         int    `json:"quantity"`
	Notes            string `json:"notes,omitempty"`
	ExpectedReturnAt string `json:"expected_return_at,omitempty"`
	OpenedAt         string `json:"opened_at"`
	ClosedAt         string `json:"closed_at,omitempty"`
}

func assignmentResponse(a *models.Assignment) AssignmentResponse {
	res := AssignmentResponse{
		ID:           a.ID,
		StockKind:    string(a.StockKind),
		StockID:      a.StockID,
		AssigneeKind: string(a.AssigneeKind),
		AssigneeID:   a.AssigneeID,
		AssigneeName: a.AssigneeName,
		Quantity:     a.Quantity,
		Notes:        a.Notes,
		OpenedAt:     a.OpenedAt.Format(time.RFC3339),
	}
	if a.ExpectedReturnAt != nil {
		res.ExpectedReturnAt = a.ExpectedReturnAt.Format("2006-01-02")
	}
	if a.ClosedAt != nil {
		res.ClosedAt = a.ClosedAt.Format(time.RFC3339)
	}
	return res
}

// ledgerError maps ledger failures onto HTTP errors. Business rejections are
// 400, missing rows 404, storage problems 500.
func ledgerError(err error) error {
	var serr *ledger.StorageError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrStockNotFound), errors.Is(err, ledger.ErrAssignmentNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.As(err, &serr):
		return fiber.NewError(fiber.StatusInternalServerError, "Storage failure, please try again")
	default:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
}

// lookupAssignee validates the assignee exists and resolves its display name.
func lookupAssignee(kind models.AssigneeKind, id uint) (ledger.Assignee, error) {
	a := ledger.Assignee{Kind: kind, ID: id}

	var err error
	switch kind {
	case models.AssigneeUser:
		var u models.User
		if err = database.DB.First(&u, "id = ?", id).Error; err == nil {
			a.Name = u.Name
		}
	case models.AssigneeLocation:
		var l models.Location
		if err = database.DB.First(&l, "id = ?", id).Error; err == nil {
			a.Name = l.Name
		}
	case models.AssigneeAsset:
		var t models.Asset
		if err = database.DB.First(&t, "id = ?", id).Error; err == nil {
			a.Name = t.Name
		}
	default:
		return a, fiber.NewError(fiber.StatusBadRequest, "assignee_kind must be user, location or asset")
	}
	if err != nil {
		return a, fiber.NewError(fiber.StatusBadRequest, "Assignee not found")
	}
	return a, nil
}

func stockExists(kind models.StockKind, id uint) bool {
	var n int64
	switch kind {
	case models.StockAccessory:
		database.DB.Model(&models.Accessory{}).Where("id = ?", id).Count(&n)
	case models.StockComponent:
		database.DB.Model(&models.Component{}).Where("id = ?", id).Count(&n)
	case models.StockAccount:
		database.DB.Model(&models.Account{}).Where("id = ?", id).Count(&n)
	case models.StockLicense:
		database.DB.Model(&models.License{}).Where("id = ?", id).Count(&n)
	case models.StockAsset:
		database.DB.Model(&models.Asset{}).Where("id = ?", id).Count(&n)
	}
	return n > 0
}

// POST /api/{kind}/:id/checkout
func CheckoutHandler(kind models.StockKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid stock id")
		}

		var body CheckoutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		assigneeKind := models.AssigneeKind(body.AssigneeKind)
		if body.AssigneeKind == "" {
			assigneeKind = models.AssigneeUser
		}
		if body.Quantity == 0 {
			body.Quantity = 1
		}

		assignee, err := lookupAssignee(assigneeKind, body.AssigneeID)
		if err != nil {
			return err
		}

		opts := ledger.CheckoutOptions{Notes: body.Notes}
		if body.ExpectedReturnAt != "" {
			d, err := time.Parse("2006-01-02", body.ExpectedReturnAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "expected_return_at must be 'YYYY-MM-DD'")
			}
			opts.ExpectedReturnAt = &d
		}

		a, err := ledger.Checkout(kind, uint(id), assignee, body.Quantity, opts)
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(assignmentResponse(a))
	}
}

// POST /api/{kind}/:id/checkin/:assignmentId
func CheckinHandler(kind models.StockKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid stock id")
		}
		assignmentID, err := c.ParamsInt("assignmentId")
		if err != nil || assignmentID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid assignment id")
		}

		// The assignment must belong to the addressed stock; checkin itself
		// revalidates open/closed state atomically.
		var a models.Assignment
		err = database.DB.
			First(&a, "id = ? AND stock_kind = ? AND stock_id = ?", assignmentID, kind, id).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Assignment not found")
		}

		if err := ledger.Checkin(uint(assignmentID)); err != nil {
			return ledgerError(err)
		}
		return c.JSON(fiber.Map{"message": "Checked in"})
	}
}

// GET /api/{kind}/:id/assignments?open=true
func ListAssignmentsHandler(kind models.StockKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid stock id")
		}
		if !stockExists(kind, uint(id)) {
			return fiber.NewError(fiber.StatusNotFound, "Stock not found")
		}

		dbq := database.DB.
			Where("stock_kind = ? AND stock_id = ?", kind, id).
			Order("opened_at desc, id desc")
		if c.Query("open") == "true" {
			dbq = dbq.Where("closed_at IS NULL")
		}

		var assignments []models.Assignment
		if err := dbq.Find(&assignments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Assignments could not be listed")
		}

		res := make([]AssignmentResponse, 0, len(assignments))
		for i := range assignments {
			res = append(res, assignmentResponse(&assignments[i]))
		}
		return c.JSON(res)
	}
}
