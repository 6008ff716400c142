package controllers

import (
	"errors"

	"campusgpt-backend/middlewares"
	"campusgpt-backend/services"
	"campusgpt-backend/stores"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (ct *UserController) Profile(c *fiber.Ctx) error {
	userId, _ := c.Locals(middlewares.LocalUserId).(string)

	profile, err := ct.users.Profile(c.UserContext(), userId)
	if errors.Is(err, stores.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"id":              profile.User.Id,
		"username":        profile.User.Username,
		"email":           profile.User.Email,
		"full_name":       profile.User.FullName,
		"student_id":      profile.User.StudentId,
		"created_at":      profile.User.CreatedAt,
		"query_count":     profile.QueryCount,
		"last_query_time": profile.LastQueryTime,
	})
}
