package router

import (
	"condominium-service/src/config"
	"condominium-service/src/controller"
	"condominium-service/src/db"
	"condominium-service/src/middleware"
	"condominium-service/src/rabbitmq"
	"condominium-service/src/repository"
	"condominium-service/src/service"
	"condominium-service/src/ws"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Dependencies carries the process-lifetime components the server owns
// and the router wires into services.
type Dependencies struct {
	Logger    *logrus.Logger
	Publisher rabbitmq.Publisher
	Hub       *ws.Hub
	Store     *repository.SessionStore
	Approvals *service.ApprovalCorrelator
}

// NewRouter sets up the router for the condominium service. It builds
// the repository and service graph over the shared database connection
// and registers all routes.
func NewRouter(cfg *config.GlobalConfig, database *db.DB, mw *middleware.Middleware, deps Dependencies) *gin.Engine {
	router := gin.Default()

	// Repositories
	residentRepo := repository.NewResidentRepository(database)
	visitRepo := repository.NewVisitRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	lprRepo := repository.NewLPRRepository(database)
	auditRepo := repository.NewAuditRepository(database)

	// Services
	auditService := service.NewAuditService(auditRepo)
	residentService := service.NewResidentService(residentRepo, auditService)
	visitService := service.NewVisitService(visitRepo, residentRepo, auditService)
	vehicleService := service.NewVehicleService(vehicleRepo, residentRepo, auditService)
	lprService := service.NewLPRService(lprRepo, vehicleRepo, deps.Publisher, auditService)
	cameraService := service.NewCameraService(lprRepo, cfg.GetMediaGatewayURL(), auditService)

	issuer := service.NewRealtimeCredentialService(cfg)
	tools := service.NewToolExecutor(residentRepo, visitRepo, deps.Publisher, deps.Approvals)
	conciergeService := service.NewConciergeService(
		deps.Store, issuer, tools, deps.Approvals,
		residentRepo, visitRepo, deps.Hub, auditService,
	)

	// Controllers
	conciergeController := controller.NewConciergeController(conciergeService)
	residentController := controller.NewResidentController(residentService)
	visitController := controller.NewVisitController(visitService)
	vehicleController := controller.NewVehicleController(vehicleService)
	lprController := controller.NewLPRController(lprService, cameraService)
	eventsController := controller.NewEventsController(deps.Hub, auditService)

	// Concierge surface. The kiosk and the hub devices are on the trusted
	// network segment; the session id is the capability.
	concierge := router.Group("/concierge")
	{
		concierge.POST("/sessions", conciergeController.StartSession)
		concierge.POST("/house-context/:houseNumber", conciergeController.GetHouseContext)
		concierge.POST("/sessions/:id/execute-tool", conciergeController.ExecuteTool)
		concierge.POST("/sessions/:id/status", conciergeController.SessionStatus)
		concierge.POST("/sessions/:id/respond", conciergeController.Respond)
		concierge.POST("/sessions/:id/end", conciergeController.EndSession)
	}

	// LPR gateway posts detections with its own network trust.
	router.POST("/lpr/events", lprController.IngestEvent)

	// Client event channel.
	router.GET("/ws", eventsController.Serve)

	// Authenticated platform surface.
	authed := router.Group("/", mw.AuthRequired())
	{
		staff := authed.Group("/", mw.RequireRole("admin", "concierge"))
		{
			staff.POST("/units", residentController.CreateUnit)
			staff.POST("/residents", residentController.CreateResident)
			staff.GET("/residents/:id", residentController.GetResident)
			staff.GET("/units/:number/residents", residentController.ListResidentsByUnit)
			staff.GET("/units/:number/visits", visitController.ListVisitsByUnit)
			staff.POST("/visits", visitController.CreateVisit)
			staff.GET("/visits/:id", visitController.GetVisit)
			staff.PUT("/visits/:id/status", visitController.UpdateVisitStatus)
			staff.POST("/vehicles", vehicleController.CreateVehicle)
			staff.GET("/residents/:id/vehicles", vehicleController.ListVehiclesByResident)
			staff.GET("/lpr/events", lprController.ListDetections)
			staff.GET("/cameras", lprController.ListCameras)
			staff.GET("/cameras/:id/stream", lprController.GetStreamEndpoint)
		}

		admin := authed.Group("/", mw.RequireRole("admin"))
		{
			admin.PATCH("/residents/:id", residentController.UpdateResident)
			admin.DELETE("/residents/:id", residentController.DeleteResident)
			admin.POST("/cameras", lprController.CreateCamera)
			admin.DELETE("/vehicles/:id", vehicleController.DeleteVehicle)
			admin.GET("/audit", eventsController.ListAudit)
		}
	}

	deps.Logger.Info("Router initialized")
	return router
}
