package domain

// DashboardView tells the rendering layer which role-specific dashboard to
// show for a session.
type DashboardView struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Available bool   `json:"available"`
	Notice    string `json:"notice,omitempty"`
}

var dashboards = map[Role]DashboardView{
	RoleStudent:        {Name: "student_dashboard", Available: true},
	RoleProfessor:      {Name: "professor_dashboard", Available: true},
	RoleDepartmentHead: {Name: "department_head_dashboard", Available: true},
	RoleExamAdmin: {
		Name:   "exam_admin_console",
		Notice: "administrator interface under development",
	},
	RoleViceDean: {
		Name:   "vice_dean_overview",
		Notice: "strategic overview under development",
	},
}

// DashboardFor returns the dashboard for role, or ErrUnknownRole.
func DashboardFor(role Role) (DashboardView, error) {
	d, ok := dashboards[role]
	if !ok {
		return DashboardView{}, ErrUnknownRole
	}
	d.Title = "Dashboard - " + role.Title()
	return d, nil
}
