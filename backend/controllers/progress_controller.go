package controllers

import (
	"eduledger/backend/config"
	"eduledger/backend/middleware"
	"eduledger/backend/services"
	"eduledger/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Recorder *services.Recorder
	Cfg      *config.Config
	validate *validator.Validate
}

func NewProgressController(recorder *services.Recorder, cfg *config.Config) *ProgressController {
	return &ProgressController{Recorder: recorder, Cfg: cfg, validate: validator.New()}
}

type LessonCompletionInput struct {
	LessonID string `json:"lessonId" validate:"required"`
	Duration uint   `json:"duration"` // seconds
}

// CompleteLesson godoc
// @Summary Record a lesson completion
// @Description Appends a lesson completion for the authenticated user and updates their aggregate
// @Tags progress
// @Accept json
// @Produce json
// @Param completion body LessonCompletionInput true "Lesson completion"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/lessons [post]
func (pc *ProgressController) CompleteLesson(c *fiber.Ctx) error {
	var input LessonCompletionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := pc.validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	username := middleware.Username(c)
	if err := pc.Recorder.RecordLessonCompletion(c.UserContext(), username, input.LessonID, input.Duration); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"username": username,
		"lessonId": input.LessonID,
	})
}

type ExerciseCompletionInput struct {
	ExerciseID string `json:"exerciseId" validate:"required"`
	Score      int    `json:"score" validate:"min=0"`
	MaxScore   int    `json:"maxScore"`
}

// CompleteExercise godoc
// @Summary Record an exercise completion
// @Description Appends an exercise completion and recomputes the user's average score
// @Tags progress
// @Accept json
// @Produce json
// @Param completion body ExerciseCompletionInput true "Exercise completion"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/exercises [post]
func (pc *ProgressController) CompleteExercise(c *fiber.Ctx) error {
	var input ExerciseCompletionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := pc.validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}
	if input.MaxScore == 0 {
		input.MaxScore = 100
	}

	username := middleware.Username(c)
	if err := pc.Recorder.RecordExerciseCompletion(c.UserContext(), username, input.ExerciseID, input.Score, input.MaxScore); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"username":   username,
		"exerciseId": input.ExerciseID,
	})
}

type ContentViewInput struct {
	ContentID string `json:"contentId" validate:"required"`
}

// ViewContent godoc
// @Summary Record a content view
// @Description Appends a content_viewed event for the authenticated user
// @Tags progress
// @Accept json
// @Produce json
// @Param view body ContentViewInput true "Viewed content"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /progress/views [post]
func (pc *ProgressController) ViewContent(c *fiber.Ctx) error {
	var input ContentViewInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := pc.validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	username := middleware.Username(c)
	if err := pc.Recorder.RecordContentView(c.UserContext(), username, input.ContentID); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"username":  username,
		"contentId": input.ContentID,
	})
}
