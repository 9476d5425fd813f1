/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package protocol

import (
	"github.com/spf13/cobra"

	"github.com/datazip-inc/tap-monday/types"
	"github.com/datazip-inc/tap-monday/utils/logger"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "check command",
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := func() error {
			if err := loadConfig(); err != nil {
				return err
			}
			if err := connector.Setup(cmd.Context()); err != nil {
				return err
			}
			return connector.Check(cmd.Context())
		}()

		// log success
		message := &types.Message{
			Type: types.ConnectionStatusMessage,
			ConnectionStatus: &types.StatusRow{
				Status: types.ConnectionSucceed,
			},
		}
		if err != nil {
			logger.Errorf("connection check failed: %s", err)
			message.ConnectionStatus.Message = err.Error()
			message.ConnectionStatus.Status = types.ConnectionFailed
		}
		return emit(message)
	},
}
