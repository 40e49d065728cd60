package controller

import (
	"io"

	"agora-be/internal/pkg/serverutils"
	"agora-be/internal/service"
	"agora-be/pkg/docparse"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IMaterialController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type materialController struct {
	materialService service.IMaterialService
}

func NewMaterialController(materialService service.IMaterialService) IMaterialController {
	return &materialController{
		materialService: materialService,
	}
}

func (c *materialController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/material/v1")
	h.Post("upload", c.Upload)
	h.Get("status/:job_id", c.Status)
	h.Get("list", c.List)
	h.Delete(":id", c.Delete)
}

func (c *materialController) Upload(ctx *fiber.Ctx) error {
	userId := ctx.FormValue("user_id")
	if userId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id required")
	}
	courseId := ctx.FormValue("course_id", "general")

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file required")
	}
	if !docparse.IsSupported(fileHeader.Filename) {
		return fiber.NewError(fiber.StatusBadRequest, "Unsupported file type")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	res, err := c.materialService.Upload(
		ctx.Context(),
		userId,
		courseId,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		content,
	)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("File uploaded successfully. Processing started.", res))
}

func (c *materialController) Status(ctx *fiber.Ctx) error {
	userId := ctx.Query("user_id")
	if userId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id required")
	}

	jobId, err := uuid.Parse(ctx.Params("job_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid job_id")
	}

	res, err := c.materialService.Status(ctx.Context(), userId, jobId)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Job not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get material status", res))
}

func (c *materialController) List(ctx *fiber.Ctx) error {
	userId := ctx.Query("user_id")
	if userId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id required")
	}

	res, err := c.materialService.List(ctx.Context(), userId, ctx.Query("course_id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list materials", res))
}

func (c *materialController) Delete(ctx *fiber.Ctx) error {
	userId := ctx.Query("user_id")
	if userId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id required")
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid material id")
	}

	if err := c.materialService.Delete(ctx.Context(), userId, id); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete material", nil))
}
