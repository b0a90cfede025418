package model

// Privilege represents an operation a role may perform
type Privilege struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

const (
	PrivActivityRecord  = "activity:record"
	PrivActivityBill    = "activity:bill"
	PrivCustomerReturn  = "customer:return"
	PrivVolumeRecord    = "volume:record"
	PrivAuditRecord     = "audit:record"
	PrivStockRead       = "stock:read"
	PrivReportRead      = "report:read"
	PrivCustomerRead    = "customer:read"
	PrivTransactionRead = "transaction:read"
	PrivSelfRead        = "self:read"
	PrivAccountUpdate   = "account:update"
)

var DefaultPrivileges = []Privilege{
	{Code: PrivActivityRecord, Name: "Catat Aktivitas Tabung"},
	{Code: PrivActivityBill, Name: "Catat Aktivitas dengan Transaksi"},
	{Code: PrivCustomerReturn, Name: "Terima Pengembalian Pelanggan"},
	{Code: PrivVolumeRecord, Name: "Catat Volume Tabung"},
	{Code: PrivAuditRecord, Name: "Catat Audit Tabung"},
	{Code: PrivStockRead, Name: "Lihat Stok"},
	{Code: PrivReportRead, Name: "Lihat Laporan"},
	{Code: PrivCustomerRead, Name: "Lihat Data Pelanggan"},
	{Code: PrivTransactionRead, Name: "Lihat Transaksi"},
	{Code: PrivSelfRead, Name: "Lihat Data Sendiri"},
	{Code: PrivAccountUpdate, Name: "Ubah Password"},
}
