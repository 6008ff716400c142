package controllers

import (
	"campusgpt-backend/apperr"
	"campusgpt-backend/middlewares"
	"campusgpt-backend/services"

	"github.com/gofiber/fiber/v2"
)

type QueryController struct {
	queries *services.QueryService
}

func NewQueryController(queries *services.QueryService) *QueryController {
	return &QueryController{queries: queries}
}

type queryRequest struct {
	Query string `json:"query"`
}

// Submit runs the query pipeline. Responses carry the success envelope:
// {success, query_id, answer} or {success, message, error}.
func (ct *QueryController) Submit(c *fiber.Ctx) error {
	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "valid query text is required",
		})
	}

	userId, _ := c.Locals(middlewares.LocalUserId).(string)
	result, err := ct.queries.Submit(c.UserContext(), userId, req.Query)
	if err != nil {
		ae := apperr.As(err)
		if ae == nil {
			return err
		}
		if ae.Kind == apperr.InvalidArgument {
			return c.Status(ae.HTTPStatus()).JSON(fiber.Map{
				"success": false,
				"message": ae.Message,
			})
		}
		return c.Status(ae.HTTPStatus()).JSON(fiber.Map{
			"success": false,
			"message": "Query processing failed",
			"error":   ae.Message,
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"query_id": result.QueryId,
		"answer":   result.Answer,
	})
}

func (ct *QueryController) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	userId, _ := c.Locals(middlewares.LocalUserId).(string)
	page, err := ct.queries.History(c.UserContext(), userId, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"queries":     page.Queries,
		"total_count": page.Total,
		"limit":       limit,
		"offset":      offset,
	})
}
