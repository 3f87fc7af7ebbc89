package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	institutionUC "github.com/khoahotran/member-directory/internal/application/usecase/institution"
	"github.com/khoahotran/member-directory/internal/domain/institution"
	"github.com/khoahotran/member-directory/pkg/apperror"
)

type InstitutionHandler struct {
	useCase *institutionUC.InstitutionUseCase
}

func NewInstitutionHandler(uc *institutionUC.InstitutionUseCase) *InstitutionHandler {
	return &InstitutionHandler{useCase: uc}
}

type collegeResponse struct {
	College *institution.Institution `json:"college"`
	Members []MemberDTO              `json:"members"`
}

// Upsert accepts multipart fields collegename, linkedinUrl and an optional image part.
func (h *InstitutionHandler) Upsert(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.Error(apperror.NewMalformedSubmission("request is not a valid multipart form", err))
		return
	}
	image, err := optionalFile(form, "image")
	if err != nil {
		c.Error(err)
		return
	}

	item, err := h.useCase.UpsertInstitution(c.Request.Context(), institutionUC.UpsertInstitutionInput{
		Name:        formValue(form, "collegename"),
		LinkedinURL: formPointer(form, "linkedinUrl"),
		Image:       image,
	})
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, item)
}

func (h *InstitutionHandler) List(c *gin.Context) {
	items, err := h.useCase.ListInstitutions(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	if items == nil {
		items = []*institution.Institution{}
	}
	respond(c, http.StatusOK, items)
}

func (h *InstitutionHandler) Get(c *gin.Context) {
	out, err := h.useCase.GetInstitution(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, collegeResponse{
		College: out.Institution,
		Members: ToMemberDTOs(out.Members),
	})
}

func (h *InstitutionHandler) AddProject(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.Error(apperror.NewMalformedSubmission("request is not a valid multipart form", err))
		return
	}
	image, err := optionalFile(form, "image")
	if err != nil {
		c.Error(err)
		return
	}

	item, err := h.useCase.AddProject(c.Request.Context(), institutionUC.AddProjectInput{
		CollegeName: formValue(form, "collegename"),
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		ProjectURL:  formValue(form, "projectUrl"),
		Image:       image,
	})
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, item)
}

func (h *InstitutionHandler) ListProjects(c *gin.Context) {
	projects, err := h.useCase.ListProjects(c.Request.Context(), c.Query("collegename"))
	if err != nil {
		c.Error(err)
		return
	}
	if projects == nil {
		projects = []institution.Project{}
	}
	respond(c, http.StatusOK, projects)
}
