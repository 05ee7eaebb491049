package controller

import (
	"errors"

	"apin-chat/internal/dto"
	"apin-chat/internal/entity"
	"apin-chat/internal/mapper"
	"apin-chat/internal/pkg/serverutils"
	"apin-chat/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	ClearAll(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	GetActive(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	GetModelTypes(ctx *fiber.Ctx) error
	SetModelType(ctx *fiber.Ctx) error
	GetAvailability(ctx *fiber.Ctx) error
	RefreshAvailability(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatStoreService
	mapper  *mapper.ChatMapper
}

func NewChatController(service service.IChatStoreService) IChatController {
	return &chatController{
		service: service,
		mapper:  mapper.NewChatMapper(),
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("/chats", c.GetAll)
	h.Post("/chats", c.Create)
	h.Delete("/chats", c.ClearAll)
	h.Get("/chats/active", c.GetActive)
	h.Delete("/chats/:id", c.Delete)
	h.Put("/chats/:id/select", c.Select)
	h.Post("/messages", c.SendMessage)
	h.Get("/model-types", c.GetModelTypes)
	h.Put("/model-type", c.SetModelType)
	h.Get("/availability", c.GetAvailability)
	h.Post("/availability/refresh", c.RefreshAvailability)
}

func (c *chatController) GetAll(ctx *fiber.Ctx) error {
	active, hasActive := c.service.ActiveChat()
	activeId := uuid.Nil
	if hasActive {
		activeId = active.Id
	}

	chats := c.service.Chats()
	res := dto.ChatListResponse{
		Chats:     make([]dto.ChatResponse, 0, len(chats)),
		ModelType: string(c.service.ModelType()),
		Busy:      c.service.IsBusy(),
	}
	for _, chat := range chats {
		res.Chats = append(res.Chats, c.mapper.ChatToResponse(chat, activeId))
	}
	if hasActive {
		res.ActiveChatId = &activeId
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all chats", res))
}

func (c *chatController) Create(ctx *fiber.Ctx) error {
	chat := c.service.CreateChat(ctx.UserContext())
	res := c.mapper.ChatToResponse(chat, chat.Id)
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create chat", res))
}

func (c *chatController) ClearAll(ctx *fiber.Ctx) error {
	chat := c.service.ClearAllChats(ctx.UserContext())
	res := c.mapper.ChatToResponse(chat, chat.Id)
	return ctx.JSON(serverutils.SuccessResponse("Success clear all chats", res))
}

func (c *chatController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid chat ID")
	}

	c.service.DeleteChat(ctx.UserContext(), id)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chat", nil))
}

func (c *chatController) Select(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid chat ID")
	}

	if !c.service.SelectChat(ctx.UserContext(), id) {
		return fiber.NewError(fiber.StatusNotFound, "Chat not found")
	}

	chat, _ := c.service.ActiveChat()
	return ctx.JSON(serverutils.SuccessResponse("Success select chat", c.mapper.ChatToResponse(chat, chat.Id)))
}

func (c *chatController) GetActive(ctx *fiber.Ctx) error {
	chat, ok := c.service.ActiveChat()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "No active chat")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get active chat", c.mapper.ChatToResponse(chat, chat.Id)))
}

// SendMessage accepts the message and returns before the reply exists.
// The reply arrives through the event stream or a later GET.
func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	err := c.service.SendMessage(ctx.UserContext(), req.Text)
	switch {
	case errors.Is(err, service.ErrModelUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, c.service.Availability().Describe())
	case errors.Is(err, service.ErrBusy):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case err != nil:
		return err
	}

	res := dto.SendMessageResponse{Busy: c.service.IsBusy()}
	if chat, ok := c.service.ActiveChat(); ok {
		res.ChatId = &chat.Id
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Message accepted", res))
}

func (c *chatController) GetModelTypes(ctx *fiber.Ctx) error {
	res := c.mapper.ModelTypesToResponse(c.service.ModelTypes(), c.service.ModelType())
	return ctx.JSON(serverutils.SuccessResponse("Success get model types", res))
}

func (c *chatController) SetModelType(ctx *fiber.Ctx) error {
	var req dto.SetModelTypeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	modelType, err := entity.ParseModelType(req.ModelType)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := c.service.SetModelType(ctx.UserContext(), modelType); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res := c.mapper.ModelTypesToResponse(c.service.ModelTypes(), c.service.ModelType())
	return ctx.JSON(serverutils.SuccessResponse("Success set model type", res))
}

func (c *chatController) GetAvailability(ctx *fiber.Ctx) error {
	res := c.mapper.AvailabilityToResponse(c.service.Availability())
	return ctx.JSON(serverutils.SuccessResponse("Success get availability", res))
}

func (c *chatController) RefreshAvailability(ctx *fiber.Ctx) error {
	res := c.mapper.AvailabilityToResponse(c.service.CheckAvailability(ctx.UserContext()))
	return ctx.JSON(serverutils.SuccessResponse("Success refresh availability", res))
}
