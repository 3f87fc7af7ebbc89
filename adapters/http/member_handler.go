package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoahotran/member-directory/internal/application/usecase/profile"
	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
)

const exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MemberHandler struct {
	submitUC *profileUC.SubmitProfileUseCase
	updateUC *profileUC.UpdateProfileUseCase
	deleteUC *profileUC.DeleteProfileUseCase
	getUC    *profileUC.GetProfileUseCase
	listUC   *profileUC.ListProfilesUseCase
	exportUC *profileUC.ExportProfilesUseCase
}

func NewMemberHandler(
	submitUC *profileUC.SubmitProfileUseCase,
	updateUC *profileUC.UpdateProfileUseCase,
	deleteUC *profileUC.DeleteProfileUseCase,
	getUC *profileUC.GetProfileUseCase,
	listUC *profileUC.ListProfilesUseCase,
	exportUC *profileUC.ExportProfilesUseCase,
) *MemberHandler {
	return &MemberHandler{
		submitUC: submitUC,
		updateUC: updateUC,
		deleteUC: deleteUC,
		getUC:    getUC,
		listUC:   listUC,
		exportUC: exportUC,
	}
}

func (h *MemberHandler) Upload(c *gin.Context) {
	raw, err := readSubmission(c)
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.submitUC.Execute(c.Request.Context(), profileUC.SubmitProfileInput{Submission: raw})
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, ToMemberDTO(output.Profile))
}

func (h *MemberHandler) Update(c *gin.Context) {
	var (
		raw profileUC.RawSubmission
		err error
	)
	if isJSONRequest(c) {
		raw, err = readJSONSubmission(c)
	} else {
		raw, err = readSubmission(c)
	}
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.updateUC.Execute(c.Request.Context(), profileUC.UpdateProfileInput{
		Key:        c.Param("key"),
		Submission: raw,
	})
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, ToMemberDTO(output.Profile))
}

func (h *MemberHandler) Delete(c *gin.Context) {
	if err := h.deleteUC.Execute(c.Request.Context(), profileUC.DeleteProfileInput{ID: c.Param("id")}); err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "member deleted")
}

// List serves GET /members?category=a,b&collegename=&year=&limit=&offset=.
func (h *MemberHandler) List(c *gin.Context) {
	input, err := listInputFromQuery(c)
	if err != nil {
		c.Error(err)
		return
	}
	h.list(c, input)
}

// Lookup serves GET /members/:key, where key is a category or a slug.
func (h *MemberHandler) Lookup(c *gin.Context) {
	key := c.Param("key")
	if _, ok := profile.ParseCategory(key); ok {
		input, err := listInputFromQuery(c)
		if err != nil {
			c.Error(err)
			return
		}
		input.Categories = []string{key}
		h.list(c, input)
		return
	}
	h.get(c, key)
}

func (h *MemberHandler) Get(c *gin.Context) {
	h.get(c, c.Param("slug"))
}

// LegacyUsers serves GET /users?collegename=&year=, which answers 404 when
// nobody matches.
func (h *MemberHandler) LegacyUsers(c *gin.Context) {
	collegeName := strings.TrimSpace(c.Query("collegename"))
	year := strings.TrimSpace(c.Query("year"))
	if collegeName == "" {
		c.Error(apperror.NewMissingField("collegename"))
		return
	}
	if year == "" {
		c.Error(apperror.NewMissingField("year"))
		return
	}

	members, err := h.listUC.Execute(c.Request.Context(), profileUC.ListProfilesInput{
		Categories:  []string{string(profile.CategoryCollege)},
		CollegeName: collegeName,
		Year:        year,
	})
	if err != nil {
		c.Error(err)
		return
	}
	if len(members) == 0 {
		c.Error(apperror.NewNotFound("members", collegeName+"/"+year))
		return
	}
	respond(c, http.StatusOK, ToMemberDTOs(members))
}

func (h *MemberHandler) Export(c *gin.Context) {
	input, err := listInputFromQuery(c)
	if err != nil {
		c.Error(err)
		return
	}
	data, err := h.exportUC.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="members.xlsx"`)
	c.Data(http.StatusOK, exportContentType, data)
}

func (h *MemberHandler) get(c *gin.Context, key string) {
	p, err := h.getUC.Execute(c.Request.Context(), key)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, ToMemberDTO(p))
}

func (h *MemberHandler) list(c *gin.Context, input profileUC.ListProfilesInput) {
	members, err := h.listUC.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, ToMemberDTOs(members))
}

func listInputFromQuery(c *gin.Context) (profileUC.ListProfilesInput, error) {
	input := profileUC.ListProfilesInput{
		CollegeName: strings.TrimSpace(c.Query("collegename")),
		Year:        strings.TrimSpace(c.Query("year")),
	}
	if raw := c.Query("category"); raw != "" {
		input.Categories = strings.Split(raw, ",")
	}

	var err error
	if input.Limit, err = queryInt(c, "limit"); err != nil {
		return input, err
	}
	if input.Offset, err = queryInt(c, "offset"); err != nil {
		return input, err
	}
	return input, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewInvalidRange(key, "must be an integer", err)
	}
	return n, nil
}
