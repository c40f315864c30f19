package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/bazaar/app/requests"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

type VendorController struct {
	service *services.VendorService
}

func NewVendorController(service *services.VendorService) *VendorController {
	return &VendorController{service: service}
}

func (c *VendorController) Create(cx *ctx.Context) {
	id, _ := cx.Identity()
	var in requests.CreateVendor
	if !cx.BindJSON(&in) {
		return
	}

	vendor, err := c.service.Create(cx.Context(), id.ID, in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Message(http.StatusCreated, "Vendor profile created successfully", response.Body{"vendor": vendor})
}

func (c *VendorController) Show(cx *ctx.Context) {
	id, _ := cx.Identity()
	vendor, err := c.service.Profile(cx.Context(), id.ID)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Message(http.StatusOK, "Vendor profile retrieved successfully", response.Body{"vendor": vendor})
}

func (c *VendorController) Index(cx *ctx.Context) {
	vendors, err := c.service.List(cx.Context())
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Message(http.StatusOK, "Vendors retrieved successfully", response.Body{"vendors": vendors})
}

// Find is the admin lookup of any vendor by id.
func (c *VendorController) Find(cx *ctx.Context) {
	vendorID, ok := cx.ParamUint("id")
	if !ok {
		cx.Fail(services.ErrInvalidVendorID)
		return
	}
	vendor, err := c.service.Find(cx.Context(), vendorID)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Message(http.StatusOK, "Vendor retrieved successfully", response.Body{"vendor": vendor})
}

func (c *VendorController) Update(cx *ctx.Context) {
	id, _ := cx.Identity()
	var in requests.UpdateVendor
	if !cx.BindJSON(&in) {
		return
	}

	vendor, err := c.service.Update(cx.Context(), id.ID, in)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Message(http.StatusOK, "Vendor profile updated successfully", response.Body{"vendor": vendor})
}

// Delete reverts the caller to customer and cascades to their orders.
func (c *VendorController) Delete(cx *ctx.Context) {
	id, _ := cx.Identity()
	deleted, err := c.service.Delete(cx.Context(), id.ID)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Message(http.StatusOK, "Vendor profile and associated orders deleted successfully",
		response.Body{"deletedOrdersCount": deleted})
}
