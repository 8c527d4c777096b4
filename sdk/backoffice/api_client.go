package backoffice

import "github.com/cppe-issia/console/sdk/internal/restmachinery"

// APIClient is the root of a tree of specialized clients for the CPPE API's
// back-office resources.
type APIClient interface {
	News() NewsClient
	Activities() ActivitiesClient
	Enrollments() EnrollmentsClient
	Media() MediaClient
	Messages() MessagesClient
	Calendar() CalendarClient
	Settings() SettingsClient
	Users() UsersClient
	Dashboard() DashboardClient
}

type apiClient struct {
	newsClient        NewsClient
	activitiesClient  ActivitiesClient
	enrollmentsClient EnrollmentsClient
	mediaClient       MediaClient
	messagesClient    MessagesClient
	calendarClient    CalendarClient
	settingsClient    SettingsClient
	usersClient       UsersClient
	dashboardClient   DashboardClient
}

// NewAPIClient returns an APIClient whose specialized clients all issue
// their calls through baseClient.
func NewAPIClient(baseClient *restmachinery.BaseClient) APIClient {
	r := resourceClient{BaseClient: baseClient}
	return &apiClient{
		newsClient:        &newsClient{r},
		activitiesClient:  &activitiesClient{r},
		enrollmentsClient: &enrollmentsClient{r},
		mediaClient:       &mediaClient{r},
		messagesClient:    &messagesClient{r},
		calendarClient:    &calendarClient{r},
		settingsClient:    &settingsClient{r},
		usersClient:       &usersClient{r},
		dashboardClient:   &dashboardClient{r},
	}
}

func (a *apiClient) News() NewsClient {
	return a.newsClient
}

func (a *apiClient) Activities() ActivitiesClient {
	return a.activitiesClient
}

func (a *apiClient) Enrollments() EnrollmentsClient {
	return a.enrollmentsClient
}

func (a *apiClient) Media() MediaClient {
	return a.mediaClient
}

func (a *apiClient) Messages() MessagesClient {
	return a.messagesClient
}

func (a *apiClient) Calendar() CalendarClient {
	return a.calendarClient
}

func (a *apiClient) Settings() SettingsClient {
	return a.settingsClient
}

func (a *apiClient) Users() UsersClient {
	return a.usersClient
}

func (a *apiClient) Dashboard() DashboardClient {
	return a.dashboardClient
}
