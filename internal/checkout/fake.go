package checkout

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SuccessMessage is the acknowledgement of a placed order.
const SuccessMessage = "Đặt hàng thành công!"

func fakeResult(now time.Time) Result {
	return Result{
		OrderID: fmt.Sprintf("%s-%s", now.UTC().Format("20060102"), uuid.NewString()[:8]),
		Message: SuccessMessage,
	}
}
