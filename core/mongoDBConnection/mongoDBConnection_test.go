// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package mongoDBConnection

import "fmt"

func Example_parseConnectionInfo() {
	info, err := parseConnectionInfo("zoo-db", `{"host": "docdb.example:27017", "username": "zoo", "password": "pw", "port": "27017"}`)
	fmt.Printf("%v|%v|%v\n", err, info.Host, info.Username)

	_, err = parseConnectionInfo("zoo-db", `{"username": "zoo"}`)
	fmt.Println(err)

	_, err = parseConnectionInfo("zoo-db", `not json`)
	fmt.Println(err)

	fmt.Println(GetDatabaseName("decals", "prod"))
	fmt.Println(GetDatabaseName("decals", ""))

	// Output:
	// <nil>|docdb.example:27017|zoo
	// secret zoo-db has no host
	// failed to parse secret: zoo-db
	// decals-prod
	// decals
}
