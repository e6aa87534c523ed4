package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used by the HTTP handlers and both bots.
type ServiceContainer struct {
	Account    AccountSvcFacade
	AccessCode AccessCodeSvcFacade
	Balance    BalanceSvcFacade
	ROI        ROISvcFacade
	Support    SupportSvcFacade
}
