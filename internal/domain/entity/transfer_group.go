package entity

// TransferGroup correlaciona el par TRANSFER_OUT / TRANSFER_IN de un traslado
// entre bodegas: mismo ítem, misma magnitud, misma referencia. Un OUT sin su
// IN correspondiente es señal de corrupción del kardex.
type TransferGroup struct {
	Reference       string // id del grupo de traslado, compartido por ambos movimientos
	ItemID          string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int64
	Out             *Movement
	In              *Movement
}
