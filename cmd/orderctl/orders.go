package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"strings"

	adminorders "github.com/akira3175/fashionshop/internal/admin/orders"
	"github.com/akira3175/fashionshop/internal/format"
	"github.com/akira3175/fashionshop/internal/platform/config"
)

type app struct {
	ctx    context.Context
	stdin  *bufio.Reader
	stdout io.Writer
	stderr io.Writer
	open   func(ctx context.Context, conn connection) (adminorders.Service, error)
}

// connection holds the flags shared by every order command.
type connection struct {
	APIURL string
	Token  string
	CSRF   string
}

func (c *connection) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.APIURL, "api", "", "order API base URL (default SHOP_ORDERS_API_URL; empty uses sample orders)")
	fs.StringVar(&c.Token, "token", "", "staff bearer token (default SHOP_ORDERS_API_TOKEN)")
	fs.StringVar(&c.CSRF, "csrf", "", "X-CSRFToken value for write requests (default: csrftoken cookie)")
}

// openService resolves the order service from flags and configuration. Without
// an API URL the in-memory sample orders are used.
func openService(ctx context.Context, conn connection) (adminorders.Service, error) {
	if conn.APIURL == "" {
		cfg, err := config.Load(ctx)
		if err == nil {
			conn.APIURL = cfg.Admin.OrdersAPIURL
		}
	}
	if conn.APIURL == "" {
		return adminorders.NewStaticService(), nil
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	var opts []adminorders.HTTPOption
	if conn.CSRF != "" {
		opts = append(opts, adminorders.WithCSRFSource(adminorders.StaticCSRF(conn.CSRF)))
	}
	return adminorders.NewHTTPService(conn.APIURL, &http.Client{Jar: jar}, opts...)
}

func (a *app) connect(conn connection) (adminorders.Service, string, error) {
	svc, err := a.open(a.ctx, conn)
	if err != nil {
		return nil, "", fmt.Errorf("open order service: %w", err)
	}
	token := conn.Token
	if token == "" {
		token = os.Getenv("SHOP_ORDERS_API_TOKEN")
	}
	return svc, token, nil
}

func (a *app) search(cmd *Command, args []string) error {
	var conn connection
	fs := cmd.NewFlagSet(a.stderr)
	conn.bind(fs)
	id := fs.String("id", "", "order id")
	day := fs.String("date", "", "exact order date (YYYY-MM-DD)")
	days := fs.Int("range", adminorders.DefaultDateRange, "look-back window in days")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, token, err := a.connect(conn)
	if err != nil {
		return err
	}
	orders, err := svc.Search(a.ctx, token, adminorders.SearchQuery{OrderID: *id, Date: *day, DateRange: *days})
	if err != nil {
		return errors.New(adminorders.Message(err, adminorders.SearchFailedNotice))
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.stdout, adminorders.NoResultsNotice)
		return nil
	}

	table := NewTableWriter([]string{"Mã đơn", "Người nhận", "Số điện thoại", "Tổng tiền", "Ngày đặt", "Trạng thái"})
	for _, o := range orders {
		display := o.StatusDisplay
		if display == "" {
			display = o.Status.Display()
		}
		table.AddRow([]string{
			strconv.FormatInt(o.ID, 10),
			o.Receiver,
			o.Phone,
			format.Price(o.TotalAmount),
			o.CreatedAt,
			display,
		})
	}
	table.Print(a.stdout)
	return nil
}

func (a *app) stats(cmd *Command, args []string) error {
	var conn connection
	fs := cmd.NewFlagSet(a.stderr)
	conn.bind(fs)
	days := fs.Int("range", adminorders.DefaultDateRange, "look-back window in days")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, token, err := a.connect(conn)
	if err != nil {
		return err
	}
	stats, err := svc.Statistics(a.ctx, token, *days)
	if err != nil {
		return errors.New(adminorders.Message(err, adminorders.StatsFailedNotice))
	}

	table := NewTableWriter([]string{"Chỉ số", "Giá trị"})
	table.AddRow([]string{"Tổng đơn hàng", format.Number(stats.TotalOrders)})
	table.AddRow([]string{adminorders.StatusPending.Display(), format.Number(stats.PendingOrders)})
	table.AddRow([]string{adminorders.StatusConfirmed.Display(), format.Number(stats.ConfirmedOrders)})
	table.AddRow([]string{adminorders.StatusShipping.Display(), format.Number(stats.ShippingOrders)})
	table.AddRow([]string{adminorders.StatusCompleted.Display(), format.Number(stats.CompletedOrders)})
	table.AddRow([]string{adminorders.StatusCancelled.Display(), format.Number(stats.CancelledOrders)})
	table.AddRow([]string{fmt.Sprintf("Doanh thu %d ngày qua", stats.DateRangeDays), format.Price(stats.TotalRevenue)})
	table.Print(a.stdout)
	return nil
}

func (a *app) accept(cmd *Command, args []string) error {
	var conn connection
	fs := cmd.NewFlagSet(a.stderr)
	conn.bind(fs)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := orderArg(fs, 1)
	if err != nil {
		return err
	}

	svc, token, err := a.connect(conn)
	if err != nil {
		return err
	}
	result, err := adminorders.NewActions(svc, a.confirmer(*yes)).Accept(a.ctx, token, id)
	return a.report(result, err, adminorders.AcceptFailedNotice)
}

func (a *app) cancel(cmd *Command, args []string) error {
	var conn connection
	fs := cmd.NewFlagSet(a.stderr)
	conn.bind(fs)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	reason := fs.String("reason", "", "cancellation reason (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := orderArg(fs, 1)
	if err != nil {
		return err
	}

	text := *reason
	if strings.TrimSpace(text) == "" {
		text, err = a.readLine(adminorders.CancelReasonPrompt + " ")
		if err != nil {
			return err
		}
	}

	svc, token, err := a.connect(conn)
	if err != nil {
		return err
	}
	result, err := adminorders.NewActions(svc, a.confirmer(*yes)).Cancel(a.ctx, token, id, text)
	return a.report(result, err, adminorders.CancelFailedNotice)
}

func (a *app) updateStatus(cmd *Command, args []string) error {
	var conn connection
	fs := cmd.NewFlagSet(a.stderr)
	conn.bind(fs)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := orderArg(fs, 2)
	if err != nil {
		return err
	}
	status := adminorders.Status(strings.TrimSpace(fs.Arg(1)))
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", fs.Arg(1))
	}

	svc, token, err := a.connect(conn)
	if err != nil {
		return err
	}
	result, err := adminorders.NewActions(svc, a.confirmer(*yes)).UpdateStatus(a.ctx, token, id, status)
	return a.report(result, err, adminorders.StatusFailedNotice)
}

func (a *app) report(result adminorders.ActionResult, err error, fallback string) error {
	if err != nil {
		return errors.New(adminorders.Message(err, fallback))
	}
	display := result.StatusDisplay
	if display == "" {
		display = result.NewStatus.Display()
	}
	fmt.Fprintf(a.stdout, "%s (%s)\n", result.Message, display)
	return nil
}

func (a *app) confirmer(skip bool) adminorders.Confirmer {
	if skip {
		return adminorders.Approved(true)
	}
	return adminorders.ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
		answer, err := a.readLine(prompt + " [y/N]: ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes", "c", "co", "có":
			return true, nil
		default:
			return false, nil
		}
	})
}

// readLine prompts on stderr and reads one line from stdin. EOF yields an empty answer.
func (a *app) readLine(prompt string) (string, error) {
	fmt.Fprint(a.stderr, prompt)
	line, err := a.stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func orderArg(fs *flag.FlagSet, want int) (int64, error) {
	if fs.NArg() != want {
		fs.Usage()
		return 0, fmt.Errorf("expected %d argument(s), got %d", want, fs.NArg())
	}
	id, err := adminorders.ParseOrderID(fs.Arg(0))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fs.Arg(0), err)
	}
	return id, nil
}
