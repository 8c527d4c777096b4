package backoffice

import (
	"context"
	"io"
	"net/http"

	"github.com/cppe-issia/console/sdk/meta"
)

const (
	contentTypePDF   = "application/pdf"
	contentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// EnrollmentStatus represents the review status of an Enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusPending  EnrollmentStatus = "en_attente"
	EnrollmentStatusAccepted EnrollmentStatus = "validee"
	EnrollmentStatusRejected EnrollmentStatus = "refusee"
)

// PaymentStatus represents how much of an Enrollment's fees have been paid.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "non_paye"
	PaymentStatusPartial PaymentStatus = "partiel"
	PaymentStatusPaid    PaymentStatus = "paye"
)

// Enrollment is an "inscription": a family's application to enroll a child.
type Enrollment struct {
	meta.ObjectMeta
	ChildLastName   string `json:"nom_enfant"`
	ChildFirstNames string `json:"prenoms_enfant"`
	BirthDate       string `json:"date_naissance,omitempty"`
	BirthPlace      string `json:"lieu_naissance,omitempty"`
	Sex             string `json:"sexe,omitempty"`
	Section         string `json:"section,omitempty"`
	SchoolYear      string `json:"annee_scolaire,omitempty"`

	FatherLastName   string `json:"nom_pere,omitempty"`
	FatherFirstName  string `json:"prenom_pere,omitempty"`
	FatherPhone      string `json:"telephone_pere,omitempty"`
	FatherProfession string `json:"profession_pere,omitempty"`
	MotherLastName   string `json:"nom_mere,omitempty"`
	MotherFirstName  string `json:"prenom_mere,omitempty"`
	MotherPhone      string `json:"telephone_mere,omitempty"`
	MotherProfession string `json:"profession_mere,omitempty"`
	GuardianName     string `json:"nom_tuteur,omitempty"`
	GuardianPhone    string `json:"telephone_tuteur,omitempty"`
	GuardianRelation string `json:"lien_tuteur,omitempty"`

	Address      string `json:"adresse_famille,omitempty"`
	Commune      string `json:"commune,omitempty"`
	Neighborhood string `json:"quartier,omitempty"`
	Comment      string `json:"commentaire,omitempty"`

	Status        EnrollmentStatus `json:"statut,omitempty"`
	PaymentStatus PaymentStatus    `json:"statut_paiement,omitempty"`
	AmountPaid    float64          `json:"montant_verse,omitempty"`
}

// EnrollmentList is an ordered and paginated list of Enrollments.
type EnrollmentList struct {
	meta.ListMeta
	Items []Enrollment
}

// EnrollmentStatusUpdate is the body of an UpdateStatus call.
type EnrollmentStatusUpdate struct {
	Status        EnrollmentStatus `json:"statut"`
	PaymentStatus PaymentStatus    `json:"statut_paiement,omitempty"`
	AmountPaid    float64          `json:"montant_verse,omitempty"`
}

// EnrollmentsClient is the specialized client for managing Enrollments.
type EnrollmentsClient interface {
	// Submit files a new Enrollment the way the public site does. It returns
	// the API's confirmation message.
	Submit(context.Context, Enrollment) (string, error)
	List(context.Context, *meta.ListOptions) (EnrollmentList, error)
	Get(context.Context, int64) (Enrollment, error)
	UpdateStatus(context.Context, int64, EnrollmentStatusUpdate) error
	// ExportPDF writes the Enrollment's PDF form to w.
	ExportPDF(context.Context, int64, io.Writer) error
	// ExportExcel writes a spreadsheet of the Enrollments matching the given
	// options to w.
	ExportExcel(context.Context, *meta.ListOptions, io.Writer) error
}

type enrollmentsClient struct {
	resourceClient
}

func (e *enrollmentsClient) Submit(
	ctx context.Context,
	enrollment Enrollment,
) (string, error) {
	return e.do(ctx, http.MethodPost, "inscriptions", enrollment, nil)
}

func (e *enrollmentsClient) List(
	ctx context.Context,
	opts *meta.ListOptions,
) (EnrollmentList, error) {
	list := EnrollmentList{}
	var err error
	list.ListMeta, err = e.list(ctx, "admin/inscriptions", opts, &list.Items)
	return list, err
}

func (e *enrollmentsClient) Get(
	ctx context.Context,
	id int64,
) (Enrollment, error) {
	enrollment := Enrollment{}
	_, err := e.do(
		ctx,
		http.MethodGet,
		idPath("admin/inscriptions/%d", id),
		nil,
		&enrollment,
	)
	return enrollment, err
}

func (e *enrollmentsClient) UpdateStatus(
	ctx context.Context,
	id int64,
	update EnrollmentStatusUpdate,
) error {
	_, err := e.do(
		ctx,
		http.MethodPatch,
		idPath("admin/inscriptions/%d/statut", id),
		update,
		nil,
	)
	return err
}

func (e *enrollmentsClient) ExportPDF(
	ctx context.Context,
	id int64,
	w io.Writer,
) error {
	return e.download(
		ctx,
		idPath("admin/inscriptions/%d/pdf", id),
		contentTypePDF,
		nil,
		w,
	)
}

func (e *enrollmentsClient) ExportExcel(
	ctx context.Context,
	opts *meta.ListOptions,
	w io.Writer,
) error {
	return e.download(
		ctx,
		"admin/inscriptions/export/excel",
		contentTypeExcel,
		opts.QueryParams(),
		w,
	)
}
