package banner

import (
	"fmt"
	"runtime"
)

const banner = `
  ____         ____                    ___  ____
 | __ )  ___  / ___| _   _ _ __ ___   / _ \|  _ \
 |  _ \ / _ \ \___ \| | | | '__/ _ \ | | | | |_) |
 | |_) |  __/  ___) | |_| | | |  __/ | |_| |  _ <
 |____/ \___| |____/ \__,_|_|  \___|  \__\_\_| \_\
`

// Print 打印启动横幅，包含版本信息和构建信息
func Print(version, commitHash, buildTime string) {
	fmt.Print(banner)
	fmt.Printf("  Version:     %s\n", version)

	if commitHash != "" && commitHash != "unknown" {
		// 如果 commit hash 太长，只显示前 7 位
		if len(commitHash) > 7 {
			commitHash = commitHash[:7]
		}
		fmt.Printf("  Commit:      %s\n", commitHash)
	}

	if buildTime != "" && buildTime != "unknown" {
		fmt.Printf("  Build Time:  %s\n", buildTime)
	}

	fmt.Printf("  Go Version:  %s\n", runtime.Version())
	fmt.Printf("  OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Println()
}
