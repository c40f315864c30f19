package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/bazaar/app/requests"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

// PaymentController serves order CRUD under /payment.
type PaymentController struct {
	service *services.OrderService
}

func NewPaymentController(service *services.OrderService) *PaymentController {
	return &PaymentController{service: service}
}

func (c *PaymentController) Create(cx *ctx.Context) {
	id, _ := cx.Identity()
	var in requests.CreateOrder
	if !cx.BindJSON(&in) {
		return
	}

	order, err := c.service.Create(cx.Context(), id.ID, in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Message(http.StatusCreated, "Order created successfully", response.Body{"order": order})
}

func (c *PaymentController) Index(cx *ctx.Context) {
	id, _ := cx.Identity()
	orders, err := c.service.ListOwn(cx.Context(), id.ID)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Message(http.StatusOK, "Orders retrieved successfully", response.Body{"orders": orders})
}

func (c *PaymentController) All(cx *ctx.Context) {
	orders, err := c.service.ListAll(cx.Context())
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Message(http.StatusOK, "All orders retrieved successfully", response.Body{"orders": orders})
}

func (c *PaymentController) Show(cx *ctx.Context) {
	id, _ := cx.Identity()
	orderID, ok := cx.ParamUint("id")
	if !ok {
		cx.Fail(services.ErrOrderNotFound)
		return
	}

	order, err := c.service.Get(cx.Context(), id.ID, orderID)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Message(http.StatusOK, "Order retrieved successfully", response.Body{"order": order})
}

func (c *PaymentController) Update(cx *ctx.Context) {
	id, _ := cx.Identity()
	orderID, ok := cx.ParamUint("id")
	if !ok {
		cx.Fail(services.ErrOrderNotFound)
		return
	}
	var in requests.UpdateOrder
	if !cx.BindJSON(&in) {
		return
	}

	order, err := c.service.Update(cx.Context(), id.ID, orderID, in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Message(http.StatusOK, "Order updated successfully", response.Body{"order": order})
}

func (c *PaymentController) Delete(cx *ctx.Context) {
	id, _ := cx.Identity()
	orderID, ok := cx.ParamUint("id")
	if !ok {
		cx.Fail(services.ErrOrderNotFound)
		return
	}

	if err := c.service.Delete(cx.Context(), id.ID, orderID); err != nil {
		cx.Fail(err)
		return
	}
	cx.Message(http.StatusOK, "Order deleted successfully", nil)
}
