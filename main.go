package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"qrpanel/config"
	"qrpanel/database"
	"qrpanel/logger"
	"qrpanel/web"
	"qrpanel/web/service"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}

	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}

	server := web.NewServer()
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// SIGHUP restarts the server so setting changes (port, base path) apply
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	// InitDB runs AutoMigrate and seeds the admin account on an empty table
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("migration done")
}

func resetSetting() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}
	err = settingService.ResetSettings()
	if err != nil {
		fmt.Println("reset setting failed:", err)
	} else {
		fmt.Println("reset setting success")
	}
}

func showSetting() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}
	port, err := settingService.GetPort()
	if err != nil {
		fmt.Println("get current port failed:", err)
	}
	userService := service.UserService{}
	admin, err := userService.GetAdmin()
	if err != nil {
		fmt.Println("get admin account failed:", err)
		return
	}
	fmt.Println("current panel settings as follows:")
	fmt.Println("admin email:", admin.Email)
	fmt.Println("port:", port)
}

func updateSetting(port int, email, password string) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	if port > 0 {
		settingService := service.SettingService{}
		if err := settingService.SetPort(port); err != nil {
			fmt.Println("set port failed:", err)
		} else {
			fmt.Printf("set port %v success\n", port)
		}
	}
	if email != "" || password != "" {
		userService := service.UserService{}
		if err := userService.UpdateAdminCredentials(email, password); err != nil {
			fmt.Println("set admin credentials failed:", err)
		} else {
			fmt.Println("set admin credentials success")
		}
	}
}

func main() {
	// a .env file is optional; environment wins in containers
	_ = godotenv.Load()
	if err := config.LoadFile("qrpanel.toml"); err != nil {
		log.Fatal("load config file:", err)
	}

	rootCmd := &cobra.Command{
		Use: "qrpanel",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	settingCmd := &cobra.Command{
		Use:   "setting",
		Short: "Manage settings",
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset all settings",
		Run: func(cmd *cobra.Command, args []string) {
			resetSetting()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update settings",
		Run: func(cmd *cobra.Command, args []string) {
			port, _ := cmd.Flags().GetInt("port")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			updateSetting(port, email, password)
		},
	}

	updateCmd.Flags().Int("port", 0, "set panel port")
	updateCmd.Flags().String("email", "", "set admin login email")
	updateCmd.Flags().String("password", "", "set admin login password")

	settingCmd.AddCommand(resetCmd, showCmd, updateCmd)
	rootCmd.AddCommand(runCmd, migrateCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
