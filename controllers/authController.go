package controllers

import (
	"campusgpt-backend/middlewares"
	"campusgpt-backend/services"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type signupRequest struct {
	Username  string  `json:"username" validate:"required,min=3,max=50"`
	Email     string  `json:"email" validate:"required,email,max=100"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	FullName  string  `json:"full_name" validate:"omitempty,max=100"`
	StudentId *string `json:"student_id" validate:"omitempty,max=20"`
}

func (ct *AuthController) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := ct.auth.Signup(c.UserContext(), services.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		StudentId: req.StudentId,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
		"token":   token,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (ct *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := ct.auth.Login(c.UserContext(), req.Email, req.Password, c.IP(), c.Get("User-Agent"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (ct *AuthController) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals(middlewares.LocalSessionToken).(string)
	if err := ct.auth.Logout(c.UserContext(), token); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}
