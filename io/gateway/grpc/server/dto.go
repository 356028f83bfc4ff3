package server

import (
	"github.com/pkg/errors"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/engine"
	"google.golang.org/protobuf/types/known/structpb"
)

func statusToProto(st engine.Status) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"asset_number":         int64(st.AssetNumber),
		"registration":         st.Registration.String(),
		"lock":                 st.Lock.String(),
		"available_transfers":  int64(st.Available),
		"aft_status":           int64(st.AftStatus),
		"history_cursor":       int64(st.HistoryCursor),
		"transfer_in_progress": st.TransferInProgress,
		"transfer_amount":      int64(st.TransferAmount),
		"balances":             amountsToMap(st.Balances.Amounts),
		"pool_id":              int64(st.Balances.PoolID),
	}
	if st.Current != nil {
		fields["current"] = recordToMap(*st.Current)
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, errors.Wrap(err, "status to proto")
	}
	return s, nil
}

func amountsToMap(a dto.Amounts) map[string]interface{} {
	return map[string]interface{}{
		"cashable":       int64(a.Cashable),
		"restricted":     int64(a.Restricted),
		"non_restricted": int64(a.NonRestricted),
	}
}

func recordToMap(rec dto.TransferRecord) map[string]interface{} {
	return map[string]interface{}{
		"transaction_id":    rec.TransactionID,
		"transaction_index": int64(rec.TransactionIndex),
		"transfer_type":     rec.TransferType.String(),
		"transfer_status":   rec.TransferStatus.String(),
		"amounts":           amountsToMap(rec.Amounts()),
	}
}
