package services

// ServiceManager groups the services the HTTP layer depends on.
type ServiceManager interface {
	Gradebook() GradebookService
	Metadata() MetadataService
	Export() ExportService
	Analytics() AnalyticsService
	Auth() AuthService
}

type serviceManager struct {
	gradebook GradebookService
	metadata  MetadataService
	export    ExportService
	analytics AnalyticsService
	auth      AuthService
}

func NewServiceManager(gradebook GradebookService, metadata MetadataService, export ExportService, analytics AnalyticsService, auth AuthService) ServiceManager {
	return &serviceManager{
		gradebook: gradebook,
		metadata:  metadata,
		export:    export,
		analytics: analytics,
		auth:      auth,
	}
}

func (m *serviceManager) Gradebook() GradebookService { return m.gradebook }
func (m *serviceManager) Metadata() MetadataService   { return m.metadata }
func (m *serviceManager) Export() ExportService       { return m.export }
func (m *serviceManager) Analytics() AnalyticsService { return m.analytics }
func (m *serviceManager) Auth() AuthService           { return m.auth }
