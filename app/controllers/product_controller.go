package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/myshop/app/repositories"
	"github.com/shashiranjanraj/myshop/app/services"
	"github.com/shashiranjanraj/myshop/pkg/bind"
	"github.com/shashiranjanraj/myshop/pkg/middleware"
	"github.com/shashiranjanraj/myshop/pkg/pagination"
	"github.com/shashiranjanraj/myshop/pkg/response"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController() *ProductController {
	return &ProductController{products: services.NewProductService()}
}

// Index handles GET /api/products.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ProductFilterFromRequest(r)
	params := pagination.FromRequest(r)

	result, err := c.products.List(filter, params)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not list products")
		return
	}

	response.Paginated(w, result)
}

// Show handles GET /api/products/{id}.
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w)
		return
	}

	product, err := c.products.Get(id)
	if err != nil {
		c.fail(w, err, "could not load product")
		return
	}

	response.Success(w, product)
}

// Store handles POST /api/products.
func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var in services.ProductInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.products.Create(userID, in)
	if err != nil {
		c.fail(w, err, "could not create product")
		return
	}

	response.Created(w, product)
}

// Update handles PUT /api/products/{id}.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	caller, role, ok := identity(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w)
		return
	}

	var in services.ProductInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.products.Update(caller, role, id, in)
	if err != nil {
		c.fail(w, err, "could not update product")
		return
	}

	response.Success(w, product)
}

// Patch handles PATCH /api/products/{id}.
func (c *ProductController) Patch(w http.ResponseWriter, r *http.Request) {
	caller, role, ok := identity(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w)
		return
	}

	var in services.ProductPatch
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.products.Patch(caller, role, id, in)
	if err != nil {
		c.fail(w, err, "could not update product")
		return
	}

	response.Success(w, product)
}

// Destroy handles DELETE /api/products/{id}.
func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	caller, role, ok := identity(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w)
		return
	}

	if err := c.products.Delete(caller, role, id); err != nil {
		c.fail(w, err, "could not delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Statistics handles GET /api/products/statistics.
func (c *ProductController) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := c.products.Statistics()
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not compute statistics")
		return
	}

	response.Success(w, stats)
}

// UploadImage handles POST /api/products/{id}/images (multipart form,
// field "image", optional "is_primary" and "sort_order").
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	caller, role, ok := identity(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w)
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.ValidationError(w, map[string]string{"image": "The image field is required."})
		return
	}
	defer file.Close()

	isPrimary, _ := strconv.ParseBool(r.FormValue("is_primary"))
	sortOrder, _ := strconv.Atoi(r.FormValue("sort_order"))

	image, err := c.products.UploadImage(caller, role, id, services.ImageInput{
		File:      file,
		Filename:  header.Filename,
		Size:      header.Size,
		IsPrimary: isPrimary,
		SortOrder: sortOrder,
	})
	if err != nil {
		c.fail(w, err, "could not store image")
		return
	}

	response.Created(w, image)
}

// DestroyImage handles DELETE /api/products/{id}/images/{imageID}.
func (c *ProductController) DestroyImage(w http.ResponseWriter, r *http.Request) {
	caller, role, ok := identity(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w)
		return
	}
	imageID, ok := pathID(r, "imageID")
	if !ok {
		response.NotFound(w)
		return
	}

	if err := c.products.DeleteImage(caller, role, id, imageID); err != nil {
		c.fail(w, err, "could not delete image")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fail maps service errors onto the response envelope.
func (c *ProductController) fail(w http.ResponseWriter, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(w, verr.Fields)
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(w)
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(w)
	default:
		response.Error(w, http.StatusInternalServerError, fallback)
	}
}

func identity(r *http.Request) (uint, string, bool) {
	userID, ok := middleware.UserIDFromCtx(r.Context())
	if !ok {
		return 0, "", false
	}
	role, _ := middleware.RoleFromCtx(r.Context())
	return userID, role, true
}

func pathID(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
