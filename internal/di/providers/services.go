package providers

import (
	"github.com/samber/do/v2"

	"github.com/storefrontapp/storefront-server/internal/logger"
	"github.com/storefrontapp/storefront-server/internal/service"
	"github.com/storefrontapp/storefront-server/internal/validation"
)

// ProvideServiceDeps provides the shared dependency bundle every domain
// service is built from.
func ProvideServiceDeps(i do.Injector) (service.Deps, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	auditHandle := do.MustInvoke[*AuditLogHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.Deps{
		Store:     storeHandle.Store,
		Validator: validation.New(),
		Audit:     auditHandle.Log,
		Search:    indexHandle.Index,
		Logger:    log.Logger,
	}, nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	return service.NewUserService(do.MustInvoke[service.Deps](i)), nil
}

// ProvideCategoryService provides the category service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	return service.NewCategoryService(do.MustInvoke[service.Deps](i)), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	return service.NewTagService(do.MustInvoke[service.Deps](i)), nil
}

// ProvideProductService provides the product service.
func ProvideProductService(i do.Injector) (*service.ProductService, error) {
	return service.NewProductService(do.MustInvoke[service.Deps](i)), nil
}

// ProvidePostService provides the post service.
func ProvidePostService(i do.Injector) (*service.PostService, error) {
	return service.NewPostService(do.MustInvoke[service.Deps](i)), nil
}

// ProvideOrderService provides the order service.
func ProvideOrderService(i do.Injector) (*service.OrderService, error) {
	return service.NewOrderService(do.MustInvoke[service.Deps](i)), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	return service.NewReviewService(do.MustInvoke[service.Deps](i)), nil
}
