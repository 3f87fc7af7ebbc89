package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	achievementUC "github.com/khoahotran/member-directory/internal/application/usecase/achievement"
	"github.com/khoahotran/member-directory/internal/application/usecase/attachment"
	"github.com/khoahotran/member-directory/pkg/apperror"
)

type AchievementHandler struct {
	useCase *achievementUC.AchievementUseCase
}

func NewAchievementHandler(uc *achievementUC.AchievementUseCase) *AchievementHandler {
	return &AchievementHandler{useCase: uc}
}

type updateAchievementRequest struct {
	Name *string `json:"name"`
	Date *string `json:"date"`
}

func (h *AchievementHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.Error(apperror.NewMalformedSubmission("request is not a valid multipart form", err))
		return
	}
	images, err := readFiles(form.File["images"])
	if err != nil {
		c.Error(err)
		return
	}

	item, err := h.useCase.CreateAchievement(c.Request.Context(), achievementUC.CreateAchievementInput{
		Name:   formValue(form, "name"),
		Date:   formValue(form, "date"),
		Images: images,
	})
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, ToAchievementDTO(item))
}

// Update accepts either JSON {name, date} or a multipart form that may carry new images.
func (h *AchievementHandler) Update(c *gin.Context) {
	input := achievementUC.UpdateAchievementInput{ID: c.Param("id")}

	if isJSONRequest(c) {
		var req updateAchievementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.NewMalformedSubmission("invalid JSON body for achievement update", err))
			return
		}
		input.Name, input.Date = req.Name, req.Date
	} else {
		form, err := c.MultipartForm()
		if err != nil {
			c.Error(apperror.NewMalformedSubmission("request is not a valid multipart form", err))
			return
		}
		var images []attachment.File
		if images, err = readFiles(form.File["images"]); err != nil {
			c.Error(err)
			return
		}
		input.Name = formPointer(form, "name")
		input.Date = formPointer(form, "date")
		input.Images = images
	}

	item, err := h.useCase.UpdateAchievement(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, ToAchievementDTO(item))
}

func (h *AchievementHandler) Delete(c *gin.Context) {
	if err := h.useCase.DeleteAchievement(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "achievement deleted")
}

func (h *AchievementHandler) Get(c *gin.Context) {
	item, err := h.useCase.GetAchievement(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, ToAchievementDTO(item))
}

// List serves GET /achievements?page=&limit=.
func (h *AchievementHandler) List(c *gin.Context) {
	page, err := queryInt(c, "page")
	if err != nil {
		c.Error(err)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		c.Error(err)
		return
	}

	items, err := h.useCase.ListAchievements(c.Request.Context(), page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, ToAchievementDTOs(items))
}
