package processors

import (
	"strings"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// Phrases marking an order as cancelled, closed or failed, matched as folded (NFC, lowercase) substrings.
var failedStatusPhrases = []string{"đã hủy", "đã đóng", "thất bại", "cancel", "closed", "failed"}

// Phrases in the return column marking a refunded order.
var refundPhrases = []string{"hoàn tiền", "refund"}

// IsFailedOrder reports whether the order is excluded from net revenue.
// Status columns are free text, so matching is by substring.
func IsFailedOrder(o models.OrderRecord) bool {
	status := utils.FoldText(o.Status)
	for _, phrase := range failedStatusPhrases {
		if strings.Contains(status, phrase) {
			return true
		}
	}
	returnStatus := utils.FoldText(o.ReturnStatus)
	for _, phrase := range refundPhrases {
		if strings.Contains(returnStatus, phrase) {
			return true
		}
	}
	return false
}
