// Command mce is a CLI client for the MyCarExpenses service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	u "github.com/gofrs/uuid/v5"

	"github.com/gotovkk/MyCarExpenses/internal/client"
	"github.com/gotovkk/MyCarExpenses/internal/client/session"
	"github.com/gotovkk/MyCarExpenses/internal/model"
)

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func parseID(s string) u.UUID {
	id, err := u.FromString(s)
	if err != nil {
		fatal(fmt.Errorf("bad id %q: %w", s, err))
	}
	return id
}

func usage() {
	fmt.Fprintf(os.Stderr, `mce CLI
Usage:
  mce -addr URL <cmd> [args]

Commands:
  version
  register     -u <username> -e <email> -p <password>
  login        -e <email> -p <password>               (saves session)
  logout
  cars
  add-car      -make <make> -model <model> [-year N] [-plate S] [-fuel S]
  rm-car       -id <uuid>
  expenses     [-car <uuid>] [-from DATE] [-to DATE] [-cat CATEGORY]
  add-expense  -car <uuid> -date DATE -amount N -cat CATEGORY [-desc S]
  edit-expense -id <uuid> -date DATE -amount N -cat CATEGORY [-desc S]
  rm-expense   -id <uuid>
  summary      [-car <uuid>] [-from DATE] [-to DATE]
  export                                              (CSV to stdout)

Dates are %s. Categories: %v
`, model.DateLayout, model.Categories)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands through the synchronization controller.
func main() {
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gw := client.NewGateway(*addr, nil)
	ctrl := client.NewController(gw, client.NewCache(), session.NewStore(), nil, nil)

	// every command except these needs a restored session
	switch cmd {
	case "version", "register", "login":
	default:
		restored, err := ctrl.Restore(ctx)
		if err != nil {
			fatal(err)
		}
		if !restored && cmd != "logout" {
			fatal(fmt.Errorf("no valid session (login required)"))
		}
	}

	switch cmd {

	case "version":
		fmt.Printf("mce %s (%s)\n", version, buildDate)

	case "register":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		username := fs.String("u", "", "username")
		email := fs.String("e", "", "email")
		password := fs.String("p", "", "password")
		_ = fs.Parse(args)
		user, err := ctrl.Register(ctx, *username, *email, *password)
		if err != nil {
			fatal(err)
		}
		printJSON(user)

	case "login":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		email := fs.String("e", "", "email")
		password := fs.String("p", "", "password")
		_ = fs.Parse(args)
		if err := ctrl.Login(ctx, *email, *password); err != nil {
			fatal(err)
		}
		fmt.Println("ok")

	case "logout":
		if err := ctrl.Logout(); err != nil {
			fatal(err)
		}
		fmt.Println("ok")

	case "cars":
		if err := ctrl.ReloadCars(ctx); err != nil {
			fatal(err)
		}
		printJSON(ctrl.Cars())

	case "add-car":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		mk := fs.String("make", "", "make")
		mdl := fs.String("model", "", "model")
		year := fs.Int("year", 0, "year")
		plate := fs.String("plate", "", "license plate")
		fuel := fs.String("fuel", "", "fuel type")
		_ = fs.Parse(args)
		car, err := ctrl.AddCar(ctx, model.NewCar{
			Make: *mk, Model: *mdl, Year: *year, LicensePlate: *plate, FuelType: *fuel,
		})
		if err != nil {
			fatal(err)
		}
		printJSON(car)

	case "rm-car":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "car id")
		_ = fs.Parse(args)
		if err := ctrl.DeleteCar(ctx, parseID(*id)); err != nil {
			fatal(err)
		}
		fmt.Println("ok")

	case "expenses":
		filter, fs := filterFlags(cmd)
		_ = fs.Parse(args)
		if err := ctrl.SetExpenseFilter(ctx, filter()); err != nil {
			fatal(err)
		}
		printJSON(ctrl.Expenses())

	case "add-expense":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		car := fs.String("car", "", "car id")
		date := fs.String("date", "", "date")
		amount := fs.Float64("amount", 0, "amount")
		cat := fs.String("cat", "", "category")
		desc := fs.String("desc", "", "description")
		_ = fs.Parse(args)
		e, err := ctrl.AddExpense(ctx, model.NewExpense{
			CarID: parseID(*car), Date: *date, Amount: *amount,
			Category: model.Category(*cat), Description: *desc,
		})
		if err != nil {
			fatal(err)
		}
		printJSON(e)

	case "edit-expense":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "expense id")
		date := fs.String("date", "", "date")
		amount := fs.Float64("amount", 0, "amount")
		cat := fs.String("cat", "", "category")
		desc := fs.String("desc", "", "description")
		_ = fs.Parse(args)
		e, err := ctrl.UpdateExpense(ctx, parseID(*id), model.NewExpense{
			Date: *date, Amount: *amount, Category: model.Category(*cat), Description: *desc,
		})
		if err != nil {
			fatal(err)
		}
		printJSON(e)

	case "rm-expense":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "expense id")
		_ = fs.Parse(args)
		if err := ctrl.DeleteExpense(ctx, parseID(*id)); err != nil {
			fatal(err)
		}
		fmt.Println("ok")

	case "summary":
		filter, fs := filterFlags(cmd)
		_ = fs.Parse(args)
		sum, err := ctrl.Summary(ctx, filter())
		if err != nil {
			fatal(err)
		}
		printJSON(sum)

	case "export":
		if err := ctrl.ReloadExpenses(ctx); err != nil {
			fatal(err)
		}
		if err := ctrl.ExportCSV(os.Stdout); err != nil {
			fatal(err)
		}

	default:
		usage()
	}
}

// filterFlags declares the shared listing filter flags; the returned func
// materializes the filter after Parse.
func filterFlags(cmd string) (func() model.ExpenseFilter, *flag.FlagSet) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	car := fs.String("car", "", "car id")
	from := fs.String("from", "", "start date")
	to := fs.String("to", "", "end date")
	cat := fs.String("cat", "", "category")
	return func() model.ExpenseFilter {
		var f model.ExpenseFilter
		if *car != "" {
			f.CarID = parseID(*car)
		}
		f.StartDate, f.EndDate = *from, *to
		f.Category = model.Category(*cat)
		return f
	}, fs
}
