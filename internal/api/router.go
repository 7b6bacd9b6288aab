package api

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/auth"
	"github.com/erazemk/assetdesk/internal/backup"
	"github.com/erazemk/assetdesk/internal/imaging"
	"github.com/erazemk/assetdesk/internal/inventory"
	"github.com/erazemk/assetdesk/internal/model"
)

// Deps are the collaborators the router wires into its handlers.
type Deps struct {
	DB        *sql.DB
	Inventory *inventory.Service
	Issuer    *auth.Issuer
	Backups   *backup.Coordinator
	Images    *imaging.Store
	Log       *zap.Logger
}

// NewRouter creates the API router with all endpoints registered. Reads
// are open to every signed-in user, writes need the manager role, and
// users and backups are admin only.
func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	recorder := d.Inventory.Activity

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, Issuer: d.Issuer, Activity: recorder, Log: log}
	usersHandler := &UsersHandler{DB: d.DB, Activity: recorder, Log: log}
	assetsHandler := &AssetsHandler{Inventory: d.Inventory, Images: d.Images, Log: log}
	workstationsHandler := &WorkstationsHandler{Inventory: d.Inventory, Log: log}
	catalogHandler := &CatalogHandler{Inventory: d.Inventory, Log: log}
	peopleHandler := &PeopleHandler{Inventory: d.Inventory, Log: log}
	adminHandler := &AdminHandler{DB: d.DB, Activity: recorder, Backups: d.Backups, Log: log}

	authMW := AuthMiddleware(d.Issuer, d.DB, log)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	read := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	write := func(h http.HandlerFunc) http.Handler { return authMW(requireManager(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public.
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("GET /api/health", adminHandler.Health)

	// Session.
	mux.Handle("POST /api/logout", read(authHandler.Logout))
	mux.Handle("PUT /api/password", read(authHandler.ChangePassword))

	// Users.
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Assets and assignment.
	mux.Handle("GET /api/assets", read(assetsHandler.List))
	mux.Handle("POST /api/assets", write(assetsHandler.Create))
	mux.Handle("POST /api/assets/delete", write(assetsHandler.DeleteBatch))
	mux.Handle("POST /api/assets/assign", write(assetsHandler.Assign))
	mux.Handle("POST /api/assets/unassign", write(assetsHandler.Unassign))
	mux.Handle("POST /api/assets/upload-image", write(assetsHandler.Upload))
	mux.Handle("GET /api/assets/{id}", read(assetsHandler.Get))
	mux.Handle("PUT /api/assets/{id}", write(assetsHandler.Update))
	mux.Handle("DELETE /api/assets/{id}", write(assetsHandler.Delete))
	mux.Handle("GET /api/assets/{id}/image", read(assetsHandler.GetImage))
	mux.Handle("PUT /api/assets/{id}/image", write(assetsHandler.SetImage))
	mux.Handle("DELETE /api/assets/{id}/image", write(assetsHandler.RemoveImage))

	// Workstations.
	mux.Handle("GET /api/workstations", read(workstationsHandler.List))
	mux.Handle("POST /api/workstations", write(workstationsHandler.Create))
	mux.Handle("GET /api/workstations/{id}", read(workstationsHandler.Get))
	mux.Handle("PUT /api/workstations/{id}", write(workstationsHandler.Update))
	mux.Handle("DELETE /api/workstations/{id}", write(workstationsHandler.Delete))

	// Employees. GET .../workstations may create a default workstation.
	mux.Handle("GET /api/employees", read(peopleHandler.ListEmployees))
	mux.Handle("POST /api/employees", write(peopleHandler.CreateEmployee))
	mux.Handle("GET /api/employees/{id}", read(peopleHandler.GetEmployee))
	mux.Handle("PUT /api/employees/{id}", write(peopleHandler.UpdateEmployee))
	mux.Handle("DELETE /api/employees/{id}", write(peopleHandler.DeleteEmployee))
	mux.Handle("GET /api/employees/{id}/workstations", read(workstationsHandler.ForEmployee))
	mux.Handle("POST /api/employees/{id}/workstations/default", write(workstationsHandler.EnsureDefault))

	// Catalog.
	mux.Handle("GET /api/models", read(catalogHandler.ListModels))
	mux.Handle("POST /api/models", write(catalogHandler.CreateModel))
	mux.Handle("GET /api/models/{id}", read(catalogHandler.GetModel))
	mux.Handle("PUT /api/models/{id}", write(catalogHandler.UpdateModel))
	mux.Handle("DELETE /api/models/{id}", write(catalogHandler.DeleteModel))
	mux.Handle("GET /api/categories", read(catalogHandler.ListCategories))
	mux.Handle("POST /api/categories", write(catalogHandler.CreateCategory))
	mux.Handle("GET /api/categories/{id}", read(catalogHandler.GetCategory))
	mux.Handle("PUT /api/categories/{id}", write(catalogHandler.UpdateCategory))
	mux.Handle("DELETE /api/categories/{id}", write(catalogHandler.DeleteCategory))
	mux.Handle("GET /api/manufacturers", read(catalogHandler.ListManufacturers))
	mux.Handle("POST /api/manufacturers", write(catalogHandler.CreateManufacturer))
	mux.Handle("GET /api/manufacturers/{id}", read(catalogHandler.GetManufacturer))
	mux.Handle("PUT /api/manufacturers/{id}", write(catalogHandler.UpdateManufacturer))
	mux.Handle("DELETE /api/manufacturers/{id}", write(catalogHandler.DeleteManufacturer))

	// Organisation.
	mux.Handle("GET /api/companies", read(peopleHandler.ListCompanies))
	mux.Handle("POST /api/companies", write(peopleHandler.CreateCompany))
	mux.Handle("GET /api/companies/{id}", read(peopleHandler.GetCompany))
	mux.Handle("PUT /api/companies/{id}", write(peopleHandler.UpdateCompany))
	mux.Handle("DELETE /api/companies/{id}", write(peopleHandler.DeleteCompany))
	mux.Handle("GET /api/departments", read(peopleHandler.ListDepartments))
	mux.Handle("POST /api/departments", write(peopleHandler.CreateDepartment))
	mux.Handle("GET /api/departments/{id}", read(peopleHandler.GetDepartment))
	mux.Handle("PUT /api/departments/{id}", write(peopleHandler.UpdateDepartment))
	mux.Handle("DELETE /api/departments/{id}", write(peopleHandler.DeleteDepartment))

	// Audit and backups.
	mux.Handle("GET /api/activity-logs", read(adminHandler.ActivityLogs))
	mux.Handle("GET /api/backups", admin(adminHandler.ListBackups))
	mux.Handle("POST /api/backups", admin(adminHandler.CreateBackup))
	mux.Handle("POST /api/backups/delete", admin(adminHandler.DeleteBackups))
	mux.Handle("DELETE /api/backups/{filename}", admin(adminHandler.DeleteBackup))
	mux.Handle("POST /api/restore", admin(adminHandler.Restore))

	return LoggingMiddleware(log)(mux)
}
