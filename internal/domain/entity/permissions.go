package entity

// Permissions es el vector de capacidades de un colaborador.
// Un override explícito en el roster reemplaza los defaults del rol.
type Permissions struct {
	CanAddProducts         bool `json:"canAddProducts"`
	CanEditProducts        bool `json:"canEditProducts"`
	CanDeleteProducts      bool `json:"canDeleteProducts"`
	CanAddSales            bool `json:"canAddSales"`
	CanEditSales           bool `json:"canEditSales"`
	CanViewSales           bool `json:"canViewSales"`
	CanAddExpenses         bool `json:"canAddExpenses"`
	CanEditExpenses        bool `json:"canEditExpenses"`
	CanDeleteExpenses      bool `json:"canDeleteExpenses"`
	CanViewReports         bool `json:"canViewReports"`
	CanManageSettings      bool `json:"canManageSettings"`
	CanManageCollaborators bool `json:"canManageCollaborators"`
	CanEditCompanyProfile  bool `json:"canEditCompanyProfile"`
}
