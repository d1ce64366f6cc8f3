package controllers

import (
	"errors"

	"eduledger/backend/config"
	"eduledger/backend/middleware"
	"eduledger/backend/models"
	"eduledger/backend/services"
	"eduledger/backend/storage"
	"eduledger/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct {
	Store    storage.Backend
	Recorder *services.Recorder
	Cfg      *config.Config
	validate *validator.Validate
}

func NewAuthController(store storage.Backend, recorder *services.Recorder, cfg *config.Config) *AuthController {
	return &AuthController{Store: store, Recorder: recorder, Cfg: cfg, validate: validator.New()}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=32"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=student teacher admin"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a new portal account with an empty progress ledger
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterInput true "Registration data"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := ac.validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := &models.User{
		Username:     input.Username,
		Name:         input.Name,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
	}
	if err := ac.Recorder.RegisterUser(c.UserContext(), user); err != nil {
		return serviceError(c, err)
	}

	token, err := utils.GenerateJWTToken(user.Username, user.Role, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"username": user.Username,
			"name":     user.Name,
			"role":     user.Role,
		},
	})
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login godoc
// @Summary User login
// @Description Authenticates the user, records the login in the ledger and returns a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	user, err := ac.Store.Users().Get(c.UserContext(), input.Username)
	if errors.Is(err, storage.ErrNotFound) {
		return utils.Unauthorized(c, "Invalid credentials")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	if err := ac.Recorder.RecordLogin(c.UserContext(), user.Username); err != nil {
		return serviceError(c, err)
	}

	token, err := utils.GenerateJWTToken(user.Username, user.Role, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"username": user.Username,
			"name":     user.Name,
			"role":     user.Role,
		},
	})
}

// Logout godoc
// @Summary User logout
// @Description Records a logout event for the authenticated user
// @Tags auth
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /auth/logout [post]
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	username := middleware.Username(c)
	if err := ac.Recorder.RecordLogout(c.UserContext(), username); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"username": username})
}
