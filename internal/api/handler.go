package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"presence-calendar/internal/export"
	"presence-calendar/internal/models"
	"presence-calendar/internal/presence"
	"presence-calendar/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Services зависимости HTTP обработчиков
type Services struct {
	Presence    *service.PresenceService
	Tasks       *service.TaskService
	Resolutions *service.ResolutionService
	Employees   *service.EmployeeService
	Follows     *service.FollowService
	Holidays    *service.NonWorkingDayService
}

type Handler struct {
	svc      Services
	exporter *export.MonthExporter
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc, exporter: export.NewMonthExporter()}
}

// RegisterRoutes регистрирует маршруты в группе /api
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	tasks := api.Group("/tasks")
	{
		tasks.GET("/month", h.GetMonth)
		tasks.GET("/month/export", h.ExportMonth)
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.GET("/:id", h.GetTask)
		tasks.PATCH("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
		tasks.POST("/:id/resolution", h.ApproveTask)
		tasks.GET("/:id/resolution", h.DownloadResolution)
	}

	api.GET("/employees", h.ListEmployees)

	follow := api.Group("/follow")
	{
		follow.GET("", h.ListFollowing)
		follow.POST("/:login", h.Follow)
		follow.DELETE("/:login", h.Unfollow)
	}

	api.GET("/holidays", h.ListHolidays)
}

// GetMonth календарь присутствия за месяц, в который попадает date
func (h *Handler) GetMonth(c *gin.Context) {
	date, ok := dateQuery(c)
	if !ok {
		return
	}

	view, err := h.svc.Presence.MonthByDate(c.Request.Context(), date)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ExportMonth тот же календарь в виде xlsx
func (h *Handler) ExportMonth(c *gin.Context) {
	date, ok := dateQuery(c)
	if !ok {
		return
	}

	view, err := h.svc.Presence.MonthByDate(c.Request.Context(), date)
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.WriteTo(&buf, view.MonthPresence, view.Holidays); err != nil {
		writeError(c, fmt.Errorf("ошибка формирования файла: %w", err))
		return
	}

	fileName := fmt.Sprintf("presence-%s.xlsx", view.Month.String())
	c.Header("Content-Disposition", attachmentDisposition(fileName))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListTasks интервалы сотрудника (?employee=) или созданные автором (?author=)
func (h *Handler) ListTasks(c *gin.Context) {
	var (
		tasks []models.Task
		err   error
	)

	switch {
	case c.Query("employee") != "":
		tasks, err = h.svc.Tasks.ListByEmployee(c.Request.Context(), c.Query("employee"))
	case c.Query("author") != "":
		tasks, err = h.svc.Tasks.ListByAuthor(c.Request.Context(), c.Query("author"))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Укажите параметр employee или author"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) GetTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	task, err := h.svc.Tasks.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// CreateTask создает интервал от имени текущего сотрудника.
// Если сотрудник в теле не указан, интервал создается для себя.
func (h *Handler) CreateTask(c *gin.Context) {
	var input models.Task
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}
	if input.Employee == "" {
		input.Employee = currentLogin(c)
	}

	task, err := h.svc.Tasks.Create(c.Request.Context(), currentLogin(c), input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var patch service.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	task, err := h.svc.Tasks.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.svc.Tasks.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ApproveTask утверждает интервал, файл передается в поле file
func (h *Handler) ApproveTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var upload *service.Upload
	fileHeader, err := c.FormFile("file")
	switch {
	case err == nil:
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ошибка чтения файла"})
			return
		}
		defer file.Close()
		upload = &service.Upload{Content: file, OriginalName: fileHeader.Filename}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	task, err := h.svc.Resolutions.Approve(c.Request.Context(), id, upload)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *Handler) DownloadResolution(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	rc, attachment, err := h.svc.Resolutions.Open(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", attachmentDisposition(attachment.OriginalName))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) ListEmployees(c *gin.Context) {
	employees, err := h.svc.Employees.Roster(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, employees)
}

func (h *Handler) ListFollowing(c *gin.Context) {
	logins, err := h.svc.Follows.Following(c.Request.Context(), currentLogin(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if logins == nil {
		logins = []string{}
	}

	c.JSON(http.StatusOK, logins)
}

func (h *Handler) Follow(c *gin.Context) {
	if err := h.svc.Follows.Follow(c.Request.Context(), currentLogin(c), c.Param("login")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Unfollow(c *gin.Context) {
	if err := h.svc.Follows.Unfollow(c.Request.Context(), currentLogin(c), c.Param("login")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHolidays выходные дни месяца (?year=&month=), по умолчанию текущего
func (h *Handler) ListHolidays(c *gin.Context) {
	month := models.MonthOf(models.DayOf(time.Now()))

	if year := c.Query("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат года"})
			return
		}
		month.Year = y
	}
	if m := c.Query("month"); m != "" {
		v, err := strconv.Atoi(m)
		if err != nil || v < 1 || v > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный номер месяца"})
			return
		}
		month.Month = time.Month(v)
	}

	days, err := h.svc.Holidays.ForMonth(c.Request.Context(), month)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, days)
}

// attachmentDisposition экранирует имя файла, не-ASCII имена кодируются по RFC 2231
func attachmentDisposition(fileName string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": fileName}); v != "" {
		return v
	}
	return "attachment"
}

func dateQuery(c *gin.Context) (models.Day, bool) {
	raw := c.Query("date")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Не указана дата"})
		return models.Day{}, false
	}
	date, err := models.ParseDay(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат даты, ожидается YYYY-MM-DD"})
		return models.Day{}, false
	}
	return date, true
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return 0, false
	}
	return uint(id), true
}

// writeError переводит ошибки сервисов в HTTP статусы. Сбой получения
// данных для календаря отдается как 503, а не как пустой календарь.
func writeError(c *gin.Context, err error) {
	var retrieval *presence.RetrievalError

	switch {
	case errors.As(err, &retrieval):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Календарь временно недоступен", "details": err.Error()})
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, service.ErrEmployeeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTask), errors.Is(err, service.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAttachmentRequired):
		c.JSON(http.StatusNotAcceptable, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера"})
	}
}
