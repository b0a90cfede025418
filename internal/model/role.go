package model

// Role codes as constants
const (
	RoleKepalaGudang = "kepala_gudang"
	RoleDriver       = "driver"
	RoleOperator     = "operator"
	RoleAuditor      = "auditor"
	RolePelanggan    = "pelanggan"
)

// Role represents user roles in the system
type Role struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Privileges  []string `json:"privileges"`
}

// DefaultRoles adalah satu-satunya kebijakan role -> operasi.
var DefaultRoles = []Role{
	{
		Code:        RoleKepalaGudang,
		Name:        "Kepala Gudang",
		Description: "Akses penuh operasional gudang",
		Privileges: []string{
			PrivActivityRecord, PrivActivityBill, PrivCustomerReturn, PrivVolumeRecord, PrivAuditRecord,
			PrivStockRead, PrivReportRead, PrivCustomerRead, PrivTransactionRead, PrivAccountUpdate,
		},
	},
	{
		Code:        RoleDriver,
		Name:        "Driver",
		Description: "Pengiriman dan penjemputan tabung",
		Privileges: []string{
			PrivActivityRecord, PrivActivityBill, PrivCustomerReturn,
			PrivStockRead, PrivReportRead, PrivCustomerRead, PrivTransactionRead, PrivAccountUpdate,
		},
	},
	{
		Code:        RoleOperator,
		Name:        "Operator",
		Description: "Pengisian volume tabung",
		Privileges:  []string{PrivVolumeRecord, PrivStockRead, PrivReportRead, PrivAccountUpdate},
	},
	{
		Code:        RoleAuditor,
		Name:        "Auditor",
		Description: "Audit fisik tabung",
		Privileges:  []string{PrivAuditRecord, PrivStockRead, PrivReportRead, PrivCustomerRead, PrivAccountUpdate},
	},
	{
		Code:        RolePelanggan,
		Name:        "Pelanggan",
		Description: "Akses data milik sendiri",
		Privileges:  []string{PrivSelfRead},
	},
}

var rolePolicy = func() map[string]map[string]struct{} {
	policy := make(map[string]map[string]struct{}, len(DefaultRoles))
	for _, r := range DefaultRoles {
		set := make(map[string]struct{}, len(r.Privileges))
		for _, p := range r.Privileges {
			set[p] = struct{}{}
		}
		policy[r.Code] = set
	}
	return policy
}()

func RoleByCode(code string) (Role, bool) {
	for _, r := range DefaultRoles {
		if r.Code == code {
			return r, true
		}
	}
	return Role{}, false
}

func RoleHasPrivilege(role, privilege string) bool {
	_, ok := rolePolicy[role][privilege]
	return ok
}

// PrivilegesFor returns a copy of the role's privilege codes.
func PrivilegesFor(role string) []string {
	r, ok := RoleByCode(role)
	if !ok {
		return []string{}
	}
	return append([]string(nil), r.Privileges...)
}

// IsStaffRole: role yang login lewat tabel users.
func IsStaffRole(role string) bool {
	switch role {
	case RoleKepalaGudang, RoleDriver, RoleOperator, RoleAuditor:
		return true
	}
	return false
}
