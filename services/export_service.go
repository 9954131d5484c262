package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/repository"
	"github.com/sahelpay/tontine-backend/utils"
)

// ExportService generates Excel statements for a group
type ExportService struct {
	groupRepo        *repository.GroupRepository
	membershipRepo   *repository.MembershipRepository
	personRepo       *repository.PersonRepository
	tourRepo         *repository.TourRepository
	contributionRepo *repository.ContributionRepository
	paymentRepo      *repository.PaymentRepository
}

// NewExportService creates a new export service
func NewExportService(
	groupRepo *repository.GroupRepository,
	membershipRepo *repository.MembershipRepository,
	personRepo *repository.PersonRepository,
	tourRepo *repository.TourRepository,
	contributionRepo *repository.ContributionRepository,
	paymentRepo *repository.PaymentRepository,
) *ExportService {
	return &ExportService{
		groupRepo:        groupRepo,
		membershipRepo:   membershipRepo,
		personRepo:       personRepo,
		tourRepo:         tourRepo,
		contributionRepo: contributionRepo,
		paymentRepo:      paymentRepo,
	}
}

// ExportGroupStatement builds an Excel workbook with the group's tours,
// contributions and payments. Any group member may export.
func (s *ExportService) ExportGroupStatement(actorID, groupID string) (*excelize.File, string, error) {
	group, err := s.groupRepo.GetGroupByID(groupID)
	if err != nil {
		return nil, "", utils.NewInternalError("Failed to retrieve group")
	}
	if group == nil {
		return nil, "", utils.NewNotFoundError("Group")
	}
	membership, err := s.membershipRepo.GetMembership(groupID, actorID)
	if err != nil {
		return nil, "", utils.NewInternalError("Failed to retrieve membership")
	}
	if membership == nil {
		return nil, "", utils.NewForbiddenError("only group members may export the statement")
	}

	members, err := s.membershipRepo.ListMembershipsByGroup(groupID)
	if err != nil {
		return nil, "", utils.NewInternalError("Failed to list members")
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		person, err := s.personRepo.GetPersonByID(m.PersonID)
		if err == nil && person != nil {
			names[m.PersonID] = person.Name
		}
	}

	tours, err := s.tourRepo.ListToursByGroup(groupID)
	if err != nil {
		return nil, "", utils.NewInternalError("Failed to list tours")
	}
	contributions, err := s.contributionRepo.ListContributionsByGroup(groupID)
	if err != nil {
		return nil, "", utils.NewInternalError("Failed to list contributions")
	}
	payments, err := s.paymentRepo.ListPaymentsByGroup(groupID)
	if err != nil {
		return nil, "", utils.NewInternalError("Failed to list payments")
	}

	f := excelize.NewFile()
	if err := s.createToursSheet(f, group, tours, names); err != nil {
		return nil, "", utils.NewInternalError("Failed to build tours sheet")
	}
	if err := s.createContributionsSheet(f, contributions, names); err != nil {
		return nil, "", utils.NewInternalError("Failed to build contributions sheet")
	}
	if err := s.createPaymentsSheet(f, payments, names); err != nil {
		return nil, "", utils.NewInternalError("Failed to build payments sheet")
	}
	f.DeleteSheet("Sheet1")

	filename := fmt.Sprintf("%s_statement_%s.xlsx", group.Code, time.Now().Format("20060102"))
	return f, filename, nil
}

func (s *ExportService) createToursSheet(f *excelize.File, group *models.Group, tours []models.Tour, names map[string]string) error {
	sheet := "Tours"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", group.Name)
	f.SetCellValue(sheet, "A2", fmt.Sprintf("Code: %s", group.Code))
	f.SetCellValue(sheet, "A3", fmt.Sprintf("Contribution: %s %s", group.Amount.StringFixed(2), group.Frequency))

	headers := []string{"Tour", "Beneficiary", "Scheduled Date", "Status", "Expected Amount"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 5)
		f.SetCellValue(sheet, cell, h)
	}

	for i, tour := range tours {
		row := i + 6
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), tour.Index)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), nameOrID(names, tour.BeneficiaryID))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), tour.ScheduledDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(tour.Status))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), amountCell(tour.ExpectedAmount))
	}
	return nil
}

func (s *ExportService) createContributionsSheet(f *excelize.File, contributions []models.Contribution, names map[string]string) error {
	sheet := "Contributions"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Member", "Tour", "Amount Due", "Penalty", "Status", "Due Date"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, c := range contributions {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), nameOrID(names, c.MemberID))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), c.TourID)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), amountCell(c.AmountDue))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), amountCell(c.PenaltyApplied))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), string(c.Status))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), c.DueDate.Format("2006-01-02"))
	}
	return nil
}

func (s *ExportService) createPaymentsSheet(f *excelize.File, payments []models.Payment, names map[string]string) error {
	sheet := "Payments"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Payer", "Amount", "Type", "Status", "External Ref", "Date"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, p := range payments {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), nameOrID(names, p.PayerID))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), amountCell(p.Amount))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), string(p.Type))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(p.Status))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.ExternalRef)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func nameOrID(names map[string]string, personID string) string {
	if name, ok := names[personID]; ok {
		return name
	}
	return personID
}

func amountCell(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}
